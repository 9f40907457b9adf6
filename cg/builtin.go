package cg

// Runtime helpers shared by every generated program. They only use POSIX awk
// features, the value rules are the ones the Go executor applies:
//
//   mf_num    a value looks numeric, awk's strnum
//   mf_cmp    both sides numeric compare as numbers, otherwise as strings
//   mf_key    canonical form of a grouping value, 5 and 5.0 are one group
//   mf_fmt    shortest round trip representation of a number
//   mf_val    key output, numeric looking values are normalized
//   mf_fail   reports an error on stderr and exits with status 2

const builtinAWK = `
function mf_fail(msg) {
  printf("%s\n", msg) > "/dev/stderr";
  exit 2;
}

function mf_num(v) {
  return (v "") ~ /^[ \t\r\n]*[-+]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][-+]?[0-9]+)?[ \t\r\n]*$/;
}

function mf_cmp(a, b) {
  if (mf_num(a) && mf_num(b)) {
    a += 0;
    b += 0;
  } else {
    a = a "";
    b = b "";
  }
  if (a < b)
    return -1;
  if (a > b)
    return 1;
  return 0;
}

function mf_truth(v) {
  if (mf_num(v))
    return (v + 0) != 0;
  return (v "") != "";
}

function mf_n(v) {
  if (!mf_num(v))
    mf_fail(sprintf("arithmetic on non numeric value (%s)", v));
  return v + 0;
}

function mf_div(a, b) {
  if (b == 0)
    mf_fail(sprintf("division by zero, %s / %s", mf_fmt(a), mf_fmt(b)));
  return a / b;
}

function mf_avg(s, c) {
  return c != 0 ? s / c : 0;
}

function mf_fmt(v,    p, s, e) {
  v += 0;
  if (v == int(v) && v > -1e15 && v < 1e15)
    return sprintf("%d", v);
  for (p = 1; p < 17; p++) {
    s = sprintf("%." p "g", v);
    if ((s + 0) == v)
      break;
  }
  s = sprintf("%." (p - 1) "e", v);
  e = substr(s, index(s, "e") + 1) + 0;
  if (e < -4 || e >= 6)
    return s;
  return sprintf("%." p "g", v);
}

function mf_key(v) {
  if (mf_num(v))
    return "n:" mf_fmt(v);
  return "s:" v;
}

function mf_val(v) {
  if (mf_num(v))
    return mf_fmt(v);
  return v;
}

function mf_measure(v, scan, r, attr, name) {
  if (!mf_num(v))
    mf_fail(sprintf("scan %d: %s of row %d is not numeric (%s), required by %s", scan, attr, r, v, name));
  return v + 0;
}
`
