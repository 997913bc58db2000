package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		errMsg  string
		wantErr bool
	}{
		{name: "valid generated id", value: "0192f1c2a7b27c1e9c1d2f3a4b5c6d7ews"},
		{name: "valid short", value: "acc"},
		{name: "valid with dash and underscore", value: "team-a_1"},
		{name: "valid max length", value: strings.Repeat("a", 64)},
		{name: "empty", value: "", wantErr: true, errMsg: "account.id cannot be empty"},
		{name: "too short", value: "ab", wantErr: true, errMsg: "at least 3"},
		{name: "too long", value: strings.Repeat("a", 65), wantErr: true, errMsg: "must not exceed 64"},
		{name: "space", value: "acc 1", wantErr: true, errMsg: "can only contain"},
		{name: "slash", value: "acc/1", wantErr: true, errMsg: "can only contain"},
		{name: "cyrillic", value: "аккаунт", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifier("account.id", tt.value)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.errMsg != "" {
				assert.Contains(t, err.Error(), tt.errMsg)
			}
		})
	}
}

func TestValidateReaction(t *testing.T) {
	tests := []struct {
		name     string
		reaction string
		wantErr  bool
	}{
		{name: "word", reaction: "like"},
		{name: "emoji", reaction: "👍"},
		{name: "max length", reaction: strings.Repeat("🔥", MaxReactionLen)},
		{name: "empty", reaction: "", wantErr: true},
		{name: "blank", reaction: "  ", wantErr: true},
		{name: "inner space", reaction: "thumbs up", wantErr: true},
		{name: "newline", reaction: "like\n", wantErr: true},
		{name: "too long", reaction: strings.Repeat("a", MaxReactionLen+1), wantErr: true},
		{name: "invalid utf8", reaction: "\xff\xfe", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateReaction(tt.reaction)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
