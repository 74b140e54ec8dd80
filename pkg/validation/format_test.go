package validation

import (
	"testing"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		format    string
		wantError bool
	}{
		{format: constants.OutputFormatPretty},
		{format: constants.OutputFormatCSV},
		{format: constants.OutputFormatJSON},
		{format: "", wantError: true},
		{format: "JSON", wantError: true},
		{format: "xml", wantError: true},
	}

	for _, tt := range tests {
		t.Run("format "+tt.format, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format)
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), "got "+tt.format)
		})
	}
}
