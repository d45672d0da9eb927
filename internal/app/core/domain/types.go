package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ClientID 客戶帳戶 ID
type ClientID uint16

// TxID 交易 ID，只在同一個 client 底下唯一
type TxID uint64

// Amount 金額，使用定點小數避免浮點誤差
type Amount = decimal.Decimal

// TxUID 已記錄交易的全域主鍵 (client, tx)
type TxUID struct {
	Client ClientID
	Tx     TxID
}

func (u TxUID) String() string {
	return fmt.Sprintf("%d/%d", u.Client, u.Tx)
}

const (
	// MaxAmountScale 小數位數上限
	MaxAmountScale = 28
	// MaxAmountDigits 有效位數上限 (含指數展開後的整數位)
	MaxAmountDigits = 28
)

// ParseAmount 解析十進位字串金額，保留完整精度與輸入的小數位數
//
// 小數位數超過 MaxAmountScale 或位數超過 MaxAmountDigits 的金額視為格式錯誤，
// 避免極端指數 (例如 1e-20000000) 讓之後每次運算都放大成數千萬位。
func ParseAmount(s string) (Amount, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	exp := amount.Exponent()
	if exp < -MaxAmountScale {
		return decimal.Zero, fmt.Errorf("%w: %q exceeds %d decimal places", ErrInvalidAmount, s, MaxAmountScale)
	}
	digits := amount.NumDigits()
	if exp > 0 {
		digits += int(exp)
	}
	if digits > MaxAmountDigits {
		return decimal.Zero, fmt.Errorf("%w: %q exceeds %d digits", ErrInvalidAmount, s, MaxAmountDigits)
	}
	return amount, nil
}

// FormatAmount 輸出金額字串，保留運算後的小數位數 (2.0 不會變成 2)
func FormatAmount(a Amount) string {
	places := -a.Exponent()
	if places < 0 {
		places = 0
	}
	return a.StringFixed(places)
}
