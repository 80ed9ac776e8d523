package enums

// PaymentMethod is a free-form string chosen at checkout. Only the
// cash-on-delivery value carries special meaning: it short-circuits
// every payment surface.
type PaymentMethod string

const PaymentMethodCOD PaymentMethod = "cod"

func (m PaymentMethod) String() string {
	return string(m)
}

// IsCOD reports whether the order bypasses online payment entirely.
func (m PaymentMethod) IsCOD() bool {
	return m == PaymentMethodCOD
}
