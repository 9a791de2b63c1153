package diag

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestListWorst(t *testing.T) {
	var l List
	assert.Equal(t, Severity(""), l.Worst())
	l.Infof(CodeStepAdjusted, "step %d", 3)
	assert.Equal(t, Info, l.Worst())
	l.Warnf(CodeLargeFinalSize, "big")
	assert.Equal(t, Warn, l.Worst())
	l.Add(Diagnostic{Severity: Err, Code: "x"})
	assert.Equal(t, Err, l.Worst())
	assert.True(t, l.Has(CodeLargeFinalSize))
	assert.False(t, l.Has(CodePoleMasked))
	assert.Equal(t, "[info] reverse_phi.step_adjusted: step 3", l[0].String())
}

func TestListLog(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	l := List{{Severity: Warn, Code: CodeLargeFinalSize, Summary: "final size above 90 deg",
		Evidence: map[string]any{"final_deg": 120}}}
	l.Log(logger)
	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"code":"looming.final_size_over_90"`)
	assert.Contains(t, out, `"final_deg":120`)
	assert.Contains(t, out, `"message":"final size above 90 deg"`)
}
