package models

type Shop string

const (
	ShopA     Shop = "Shop A"
	ShopB     Shop = "Shop B"
	ShopHotel Shop = "Hotel"
)

// LaundryShops are the laundry locations in reporting order.
var LaundryShops = []Shop{ShopA, ShopB}

func (s Shop) Valid() bool {
	switch s {
	case ShopA, ShopB, ShopHotel:
		return true
	}
	return false
}

func (s Shop) BusinessLine() BusinessLine {
	if s == ShopHotel {
		return LineHotel
	}
	return LineLaundry
}

type BusinessLine string

const (
	LineLaundry BusinessLine = "laundry"
	LineHotel   BusinessLine = "hotel"
)

func (l BusinessLine) Valid() bool {
	return l == LineLaundry || l == LineHotel
}

// Shops returns the shops that belong to the business line.
func (l BusinessLine) Shops() []Shop {
	if l == LineHotel {
		return []Shop{ShopHotel}
	}
	return LaundryShops
}

// CodePrefix is the prefix of order codes issued for the line.
func (l BusinessLine) CodePrefix() string {
	if l == LineHotel {
		return "HTL"
	}
	return "ORD"
}
