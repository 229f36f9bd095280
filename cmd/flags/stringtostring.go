package flags

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/pflag"
)

// StringToString is a map flag value accepting key=value pairs. Pairs from
// repeated flags are merged, replacing the default upon first use.
type StringToString struct {
	value   *map[string]string
	changed bool
}

func (s *StringToString) Set(val string) error {
	var ss []string
	n := strings.Count(val, "=")
	switch n {
	case 0:
		return fmt.Errorf("%s must be formatted as key=value", val)
	case 1:
		ss = append(ss, strings.Trim(val, `"`))
	default:
		r := csv.NewReader(strings.NewReader(val))
		var err error
		ss, err = r.Read()
		if err != nil {
			return err
		}
	}

	out := make(map[string]string, len(ss))
	for _, pair := range ss {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return fmt.Errorf("%s must be formatted as key=value", pair)
		}
		out[kv[0]] = kv[1]
	}
	if !s.changed || *s.value == nil {
		*s.value = out
	} else {
		for k, v := range out {
			(*s.value)[k] = v
		}
	}
	s.changed = true
	return nil
}

func (s *StringToString) Type() string {
	return "stringToString"
}

func (s *StringToString) String() string {
	records := make([]string, 0, len(*s.value))
	for k, v := range *s.value {
		records = append(records, k+"="+v)
	}
	sort.Strings(records)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(records); err != nil {
		panic(err)
	}
	w.Flush()
	return "[" + strings.TrimSpace(buf.String()) + "]"
}

// StringToStringVar defines a StringToString flag on fs, storing its value in p
func StringToStringVar(fs *pflag.FlagSet, p *map[string]string, name, usage string) {
	fs.Var(&StringToString{value: p}, name, usage)
}
