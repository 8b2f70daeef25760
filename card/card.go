// Package card holds the identifiers shared by the lookup, locate and patch
// stages.
package card

import (
	"strconv"
	"strings"
)

// CardIdentity is the public key of a printing.
type CardIdentity struct {
	// Name is the card name as shown in the client.
	Name string
	// ExpansionCode is the upper-case set code (e.g. "OM1").
	ExpansionCode string
	// CollectorNumber is kept as a string since it can contain letters
	// ("91a", "12★").
	CollectorNumber string
}

// Printing returns the (expansion code, collector number) key of the identity.
func (c CardIdentity) Printing() PrintingKey {
	return PrintingKey{
		ExpansionCode:   NormalizeExpansionCode(c.ExpansionCode),
		CollectorNumber: strings.TrimSpace(c.CollectorNumber),
	}
}

// Complete reports whether the printing key is fully set.
func (c CardIdentity) Complete() bool {
	key := c.Printing()
	return len(key.ExpansionCode) > 0 && len(key.CollectorNumber) > 0
}

func (c CardIdentity) String() string {
	return c.Name + " [" + c.Printing().String() + "]"
}

// PrintingKey identifies one printing in the local database.
type PrintingKey struct {
	ExpansionCode   string
	CollectorNumber string
}

func (k PrintingKey) String() string {
	return k.ExpansionCode + "-" + k.CollectorNumber
}

// InternalIDs are the numeric identifiers the client uses for a printing.
// CardID addresses the metadata records (e.g. the title), ArtID the artwork.
type InternalIDs struct {
	CardID int
	ArtID  int
}

func (ids InternalIDs) String() string {
	return "card " + strconv.Itoa(ids.CardID) + ", art " + strconv.Itoa(ids.ArtID)
}

// TitleRecordName is the name of the text record holding the display name of
// a card.
func TitleRecordName(cardID int) string {
	return "Card_Title_" + strconv.Itoa(cardID)
}

// NormalizeExpansionCode returns the canonical upper-case form of a set code.
func NormalizeExpansionCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
