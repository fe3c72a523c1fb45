package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserFilter_Validate(t *testing.T) {
	limit := 10
	tests := []struct {
		name    string
		f       UserFilter
		wantErr bool
	}{
		{"empty", UserFilter{}, false},
		{"usernames", UserFilter{Username: "johne,lindas"}, false},
		{"hyphen in lastname", UserFilter{Lastname: "smith-jones"}, false},
		{"hyphen in username", UserFilter{Username: "smith-jones"}, true},
		{"empty token", UserFilter{Username: "johne,"}, true},
		{"injection", UserFilter{Username: "x' OR '1'='1"}, true},
		{"sort ok", UserFilter{SortBy: "-lastname,firstname"}, false},
		{"sort unknown field", UserFilter{SortBy: "password"}, true},
		{"fields ok", UserFilter{Fields: "userid,email"}, false},
		{"fields unknown", UserFilter{Fields: "locked"}, true},
		{"negative offset", UserFilter{Offset: -1}, true},
		{"valid range", UserFilter{Offset: 5, Limit: &limit}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.f.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, KindValidation, KindOf(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUserFilter_ValidateZeroLimit(t *testing.T) {
	zero := 0
	err := (&UserFilter{Limit: &zero}).Validate()
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestGroupFilter_Validate(t *testing.T) {
	assert.NoError(t, (&GroupFilter{Groupname: "devs,testers", SortBy: "-groupname"}).Validate())
	assert.Error(t, (&GroupFilter{SortBy: "lastname"}).Validate())
	assert.Error(t, (&GroupFilter{Fields: "member"}).Validate())
}

func TestSortKeys(t *testing.T) {
	f := &UserFilter{SortBy: "-lastname,firstname"}
	assert.Equal(t, []SortKey{
		{Field: "lastname", Desc: true},
		{Field: "firstname"},
	}, f.SortKeys())

	// default sort follows storage order
	assert.Equal(t, []SortKey{{Field: "userid"}}, (&UserFilter{}).SortKeys())
	assert.Equal(t, []SortKey{{Field: "groupid"}}, (&GroupFilter{}).SortKeys())
}

func TestReturnFields(t *testing.T) {
	f := &UserFilter{Fields: "userid,email"}
	assert.Equal(t, []string{"userid", "email"}, f.ReturnFields())
	assert.Nil(t, (&UserFilter{}).ReturnFields())
}
