package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/JoeShih716/go-payments-engine/internal/app/core/domain"
)

// ErrMalformedRecord CSV 資料列格式錯誤
var ErrMalformedRecord = errors.New("malformed record")

var requiredColumns = []string{"type", "client", "tx"}

// Reader 逐筆讀取交易 CSV
//
// 第一列為標頭 (type, client, tx, amount)，欄位前後空白會被忽略，
// 非存款/提款的資料列可以省略 amount 欄位。
type Reader struct {
	r       *csv.Reader
	columns map[string]int
}

// NewReader 建立 Reader
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	return &Reader{r: cr}
}

// Next 回傳下一筆交易，讀完時回傳 io.EOF
func (r *Reader) Next() (domain.Transaction, error) {
	if r.columns == nil {
		if err := r.readHeader(); err != nil {
			return domain.Transaction{}, err
		}
	}

	record, err := r.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Transaction{}, io.EOF
		}
		return domain.Transaction{}, fmt.Errorf("read transaction: %w", err)
	}
	line, _ := r.r.FieldPos(0)

	tran, err := r.parse(record)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("line %d: %w", line, err)
	}
	return tran, nil
}

// ReadAll 讀取全部交易
func (r *Reader) ReadAll() ([]domain.Transaction, error) {
	var trans []domain.Transaction
	for {
		tran, err := r.Next()
		if errors.Is(err, io.EOF) {
			return trans, nil
		}
		if err != nil {
			return nil, err
		}
		trans = append(trans, tran)
	}
}

func (r *Reader) readHeader() error {
	header, err := r.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		return fmt.Errorf("read header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return fmt.Errorf("%w: header missing column %q", ErrMalformedRecord, name)
		}
	}
	r.columns = columns
	return nil
}

func (r *Reader) field(record []string, name string) string {
	i, ok := r.columns[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (r *Reader) parse(record []string) (domain.Transaction, error) {
	client, err := strconv.ParseUint(r.field(record, "client"), 10, 16)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("%w: client: %v", ErrMalformedRecord, err)
	}
	tx, err := strconv.ParseUint(r.field(record, "tx"), 10, 64)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("%w: tx: %v", ErrMalformedRecord, err)
	}

	var amount *domain.Amount
	if raw := r.field(record, "amount"); raw != "" {
		a, err := domain.ParseAmount(raw)
		if err != nil {
			return domain.Transaction{}, err
		}
		amount = &a
	}

	return domain.ParseTransaction(r.field(record, "type"), domain.ClientID(client), domain.TxID(tx), amount)
}
