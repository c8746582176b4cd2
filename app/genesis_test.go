package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iov-one/custody/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadGenesis(t *testing.T) {
	cases := map[string]struct {
		content string
		wantErr *errors.Error
		chainID string
	}{
		"valid": {
			content: `{"chain_id": "custody-test", "app_options": {"cash": []}}`,
			chainID: "custody-test",
		},
		"missing chain id": {
			content: `{"app_options": {}}`,
			wantErr: errors.ErrEmpty,
		},
		"malformed": {
			content: `{"chain_id": `,
			wantErr: errors.ErrInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "genesis.json")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o600))
			gen, err := LoadGenesis(path)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr == nil {
				assert.Equal(t, tc.chainID, gen.ChainID)
			}
		})
	}
}

func TestLoadGenesisMissingFile(t *testing.T) {
	_, err := LoadGenesis(filepath.Join(t.TempDir(), "nope.json"))
	assert.True(t, errors.ErrInput.Is(err))
}
