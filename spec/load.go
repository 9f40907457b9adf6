package spec

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dianpeng/mfquery/errs"
	"github.com/segmentio/encoding/json"
	"gopkg.in/yaml.v3"
)

const (
	FormatJSON = iota
	FormatYAML
)

// on disk shape, same as the input.json used by the MF generator. sigma is
// kept loose since it is either a list or an object keyed by scan index
type rawSpec struct {
	V     []string    `json:"V" yaml:"V"`
	F     []string    `json:"F" yaml:"F"`
	N     int         `json:"n" yaml:"n"`
	Sigma interface{} `json:"sigma" yaml:"sigma"`
	G     string      `json:"G" yaml:"G"`
	S     []string    `json:"S" yaml:"S"`
}

func formatOf(path string) int {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads and validates a spec file, the format is picked by extension
func Load(path string) (*QuerySpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("stage(load): %w", err)
	}
	return Parse(data, formatOf(path))
}

func Parse(data []byte, format int) (*QuerySpec, error) {
	raw := rawSpec{}

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, errs.Spec("load", "invalid yaml: %s", err)
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, errs.Spec("load", "invalid json: %s", err)
		}
	}

	sigma, err := parseSigma(raw.Sigma)
	if err != nil {
		return nil, err
	}

	out := &QuerySpec{
		V:     raw.V,
		F:     raw.F,
		N:     raw.N,
		Sigma: sigma,
		G:     raw.G,
		S:     raw.S,
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// SigmaIndex extracts the grouping variable index of a filter in list form,
// ie "2.state = 'NJ'" belongs to grouping variable 2
func SigmaIndex(cond string) (int, error) {
	c := strings.TrimSpace(cond)
	pos := strings.Index(c, ".")
	if pos <= 0 {
		return -1, errs.Spec("load", "sigma entry(%s) does not start with <index>.", cond)
	}
	idx, err := strconv.Atoi(c[:pos])
	if err != nil {
		return -1, errs.Spec("load", "sigma entry(%s) has non numeric index", cond)
	}
	return idx, nil
}

func sigmaKey(k string) (int, error) {
	idx, err := strconv.Atoi(strings.TrimSpace(k))
	if err != nil {
		return -1, errs.Spec("load", "sigma key(%s) is not a scan index", k)
	}
	return idx, nil
}

func sigmaText(k interface{}, v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errs.Spec("load", "sigma[%v] must be a string, got %T", k, v)
	}
	return s, nil
}

func parseSigma(v interface{}) (map[int]string, error) {
	out := make(map[int]string)

	switch x := v.(type) {
	case nil:
		return out, nil

	case []interface{}:
		for _, e := range x {
			text, err := sigmaText(len(out), e)
			if err != nil {
				return nil, err
			}
			idx, err := SigmaIndex(text)
			if err != nil {
				return nil, err
			}
			if _, ok := out[idx]; ok {
				return nil, errs.Spec("load", "grouping variable %d has more than one filter", idx)
			}
			out[idx] = text
		}
		return out, nil

	case map[string]interface{}:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			idx, err := sigmaKey(k)
			if err != nil {
				return nil, err
			}
			text, err := sigmaText(k, x[k])
			if err != nil {
				return nil, err
			}
			out[idx] = text
		}
		return out, nil

	// yaml.v3 yields this shape when the keys are written as bare integers
	case map[interface{}]interface{}:
		for k, e := range x {
			idx, err := sigmaKey(fmt.Sprintf("%v", k))
			if err != nil {
				return nil, err
			}
			text, err := sigmaText(k, e)
			if err != nil {
				return nil, err
			}
			out[idx] = text
		}
		return out, nil

	default:
		return nil, errs.Spec("load", "sigma must be a list or an object, got %T", v)
	}
}
