package valueobject

import "fmt"

// CardType is the payment network of a transaction's card.
type CardType struct {
	value string
}

var (
	CardTypeVisa       = CardType{value: "VISA"}
	CardTypeMastercard = CardType{value: "MASTERCARD"}
	CardTypeAmex       = CardType{value: "AMEX"}
	CardTypeDiscover   = CardType{value: "DISCOVER"}
)

// CardTypes lists the networks the synthesizer draws from, in draw order.
var CardTypes = []CardType{CardTypeVisa, CardTypeMastercard, CardTypeAmex, CardTypeDiscover}

// CardTypeFromString reconstructs a CardType from its string representation.
func CardTypeFromString(s string) (CardType, error) {
	for _, ct := range CardTypes {
		if ct.value == s {
			return ct, nil
		}
	}
	return CardType{}, fmt.Errorf("invalid card type: %q", s)
}

// String returns the string representation.
func (c CardType) String() string {
	return c.value
}

// IsAmex reports whether this is the AMEX network, the only card type the
// model sees as a feature.
func (c CardType) IsAmex() bool {
	return c == CardTypeAmex
}

// IsZero returns true if the CardType has not been set.
func (c CardType) IsZero() bool {
	return c.value == ""
}
