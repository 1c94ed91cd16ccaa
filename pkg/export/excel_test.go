package export

import (
	"bytes"
	"testing"
	"time"

	"inquiry-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteInquiries(t *testing.T) {
	headers := InquiryHeaders(func(key string) string { return key })
	require.Len(t, headers, 9)
	assert.Equal(t, "form.commodity", headers[7])

	items := []domain.ArchivedInquiry{{
		ID:        7,
		AttemptID: "att-1",
		Lang:      "vi",
		Inquiry: domain.Inquiry{
			Name:      "Tran B",
			Company:   "VNR",
			Email:     "b@vnr.vn",
			Phone:     "0912345678",
			PolPod:    "Yen Vien / Nanning",
			Commodity: "Rice 1006",
		},
		DispatchedAt: time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC),
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteInquiries(&buf, headers, items))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, headers, rows[0])
	assert.Equal(t, []string{"7", "May 1, 2026 at 09:30 AM", "Tran B", "VNR", "b@vnr.vn", "0912345678", "Yen Vien / Nanning", "Rice 1006", "vi"}, rows[1])
}
