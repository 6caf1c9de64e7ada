package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoShort(t *testing.T) {
	info := GetInfo()
	assert.Equal(t, "justrun", info.Program)

	info.Version, info.Commit = "v0.3.0", "none"
	assert.Equal(t, "justrun v0.3.0", info.Short())

	info.Commit = "abc1234"
	assert.Equal(t, "justrun v0.3.0 (abc1234)", info.Short())
	assert.Contains(t, info.String(), "Commit:\t\tabc1234")
}
