package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/grass-estimator/internal/model"
	"github.com/sells-group/grass-estimator/internal/pricing"
	"github.com/sells-group/grass-estimator/internal/resultparse"
	"github.com/sells-group/grass-estimator/internal/workflow"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// render writes the terminal state of an attempt in the requested format.
func render(w io.Writer, st workflow.State, format string, f *pricing.Formatter) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(st), "encode json")
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(st); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		return eris.Wrap(enc.Close(), "encode yaml")
	case formatText, "":
		renderText(w, st, f)
		return nil
	default:
		return eris.Errorf("unknown output format %q", format)
	}
}

func renderText(w io.Writer, st workflow.State, f *pricing.Formatter) {
	if st.Status != workflow.StatusSuccess || st.Result == nil {
		if st.Error != "" {
			fmt.Fprintln(w, st.Error)
		}
		return
	}
	res := st.Result

	area := res.AreaLabel
	if area == "" {
		area = "unknown"
	}
	fmt.Fprintf(w, "Area:      %s\n", area)

	fmt.Fprintln(w, "Length:")
	writeBuckets(w, res.LengthBucket, model.LengthBuckets)
	fmt.Fprintln(w, "Condition:")
	writeBuckets(w, res.ConditionBucket, model.ConditionBuckets)

	price := "unavailable"
	if res.Price != nil {
		if f != nil {
			price = f.Format(res.Price)
		} else {
			price = fmt.Sprintf("%.2f", *res.Price)
		}
	}
	fmt.Fprintf(w, "Price:     %s\n", price)
}

// writeBuckets lists every known label and marks the one the service chose.
// A label outside the list is shown on its own line.
func writeBuckets(w io.Writer, label string, buckets []string) {
	idx, ok := resultparse.MatchBucket(label, buckets)
	for i, b := range buckets {
		mark := " "
		if ok && i == idx {
			mark = "x"
		}
		fmt.Fprintf(w, "  [%s] %s\n", mark, b)
	}
	if !ok && label != "" {
		fmt.Fprintf(w, "  [x] %s\n", label)
	}
}
