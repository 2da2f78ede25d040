package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, Params{Page: 1, Limit: DefaultLimit}, Params{}.Normalize())
	assert.Equal(t, Params{Page: 3, Limit: MaxLimit}, Params{Page: 3, Limit: 500}.Normalize())
	assert.Equal(t, Params{Page: MaxPage, Limit: 5}, Params{Page: MaxPage + 1, Limit: 5}.Normalize())
}
