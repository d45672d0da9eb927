package csv

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/JoeShih716/go-payments-engine/internal/app/core/domain"
)

var viewHeader = []string{"client", "available", "held", "total", "locked"}

// WriteViews 輸出帳戶快照 CSV，金額保留完整精度與小數位數
func WriteViews(w io.Writer, views []domain.AccountView) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(viewHeader); err != nil {
		return err
	}
	for _, v := range views {
		record := []string{
			strconv.FormatUint(uint64(v.Client), 10),
			domain.FormatAmount(v.Available),
			domain.FormatAmount(v.Held),
			domain.FormatAmount(v.Total),
			strconv.FormatBool(v.Locked),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadViews 讀取 WriteViews 產生的 CSV
func ReadViews(r io.Reader) ([]domain.AccountView, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	views := make([]domain.AccountView, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) != len(viewHeader) {
			return nil, ErrMalformedRecord
		}
		client, err := strconv.ParseUint(record[0], 10, 16)
		if err != nil {
			return nil, err
		}
		var amounts [3]domain.Amount
		for i := range amounts {
			if amounts[i], err = domain.ParseAmount(record[i+1]); err != nil {
				return nil, err
			}
		}
		locked, err := strconv.ParseBool(record[4])
		if err != nil {
			return nil, err
		}
		views = append(views, domain.AccountView{
			Client:    domain.ClientID(client),
			Available: amounts[0],
			Held:      amounts[1],
			Total:     amounts[2],
			Locked:    locked,
		})
	}
	return views, nil
}
