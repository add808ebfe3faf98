package common_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/CombiRx-Discovery/pkg/types/common"
)

func TestNewID_Unique(t *testing.T) {
	t.Parallel()

	a := common.NewID()
	b := common.NewID()
	assert.False(t, a.IsZero())
	assert.NotEqual(t, a, b)
}

func TestStatus_IsTerminal(t *testing.T) {
	t.Parallel()

	assert.True(t, common.StatusCompleted.IsTerminal())
	assert.True(t, common.StatusFailed.IsTerminal())
	assert.False(t, common.StatusPending.IsTerminal())
	assert.False(t, common.StatusRunning.IsTerminal())
}

func TestTimestamp_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	orig := common.Timestamp(time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC))
	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var decoded common.Timestamp
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, orig.Time().Equal(decoded.Time()))

	var bad common.Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"not-a-time"`), &bad))
}

func TestPagination_Offset(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, common.Pagination{Page: 0, PageSize: 20}.Offset())
	assert.Equal(t, 0, common.Pagination{Page: 1, PageSize: 20}.Offset())
	assert.Equal(t, 40, common.Pagination{Page: 3, PageSize: 20}.Offset())
}

//Personal.AI order the ending
