package response

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuccess(t *testing.T) {
	resp := Success(map[string]string{"id": "abc"})

	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
	assert.NotNil(t, resp.Data)
}

func TestError(t *testing.T) {
	resp := Error(ErrCodeNotFound, "raffle not found")

	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "raffle not found", resp.Error.Message)
}

func TestSlotsUnavailable(t *testing.T) {
	resp := SlotsUnavailable("4,7")

	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeSlotsUnavailable, resp.Error.Code)
	assert.Equal(t, "4,7", resp.Error.Details["numbers"])
}

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeSlotsUnavailable, http.StatusConflict},
		{ErrCodeInsufficientInventory, http.StatusConflict},
		{ErrCodeHolderMismatch, http.StatusForbidden},
		{ErrCodeQuotaExceeded, http.StatusPaymentRequired},
		{ErrCodeAlreadyClosed, http.StatusConflict},
		{ErrCodeInvalidWinner, http.StatusUnprocessableEntity},
		{ErrCodeNoEligibleSlots, http.StatusUnprocessableEntity},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}
}

func TestPaginated(t *testing.T) {
	resp := Paginated([]int{1, 2, 3}, 1, 20, 45)

	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Meta.Page)
	assert.Equal(t, 20, resp.Meta.PerPage)
	assert.Equal(t, int64(45), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}
