package errs

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(KindSpec, Kind(Spec("classify", "unknown kind %s", "median")))
	assert.Equal(KindPredicateSyntax, Kind(PredicateSyntax("filter", "bad")))
	assert.Equal(KindReference, Kind(Reference("having", "bad")))
	assert.Equal(KindRow, Kind(Row("scan", "bad")))
	assert.Equal(KindUnknown, Kind(fmt.Errorf("io")))
	assert.Equal(KindUnknown, Kind(nil))
}

func TestMessageAndWrap(t *testing.T) {
	assert := assert.New(t)

	err := Spec("classify", "unknown aggregate kind in field(%s)", "median_quant")
	assert.True(strings.Contains(err.Error(), "stage(classify)"))
	assert.True(strings.Contains(err.Error(), "median_quant"))

	// marks survive wrapping
	wrapped := errors.Wrap(err, "plan")
	assert.True(errors.Is(wrapped, ErrSpec))
	assert.False(errors.Is(wrapped, ErrRow))

	hinted := Hint(err, "use one of sum, count, min, max, avg")
	assert.Equal([]string{"use one of sum, count, min, max, avg"}, Hints(hinted))
	assert.Equal(KindSpec, Kind(hinted))
	assert.Equal("spec", KindName(Kind(hinted)))
}
