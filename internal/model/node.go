package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Node kinds. PRODUCER sits at the top of the supply chain by convention;
// NETWORK and RESELLER buy from a supplier above them.
const (
	KindProducer = "PRODUCER"
	KindNetwork  = "NETWORK"
	KindReseller = "RESELLER"
)

// ValidKind reports whether k is one of the three supported node kinds.
func ValidKind(k string) bool {
	return k == KindProducer || k == KindNetwork || k == KindReseller
}

// Node is a participant in the supply hierarchy: a production site, a
// wholesale network, or an individual reseller. Supplier is a nullable
// self-reference; Level is derived from the supplier chain and never set
// directly. Debt is mutable only through the clear-debt operation.
type Node struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"not null"`
	Kind        string    `gorm:"not null;index:idx_nodes_supplier_kind,priority:2"`
	Email       string    `gorm:"not null"`
	Country     string    `gorm:"not null;index:idx_nodes_country_level,priority:1"`
	City        string    `gorm:"not null;index"`
	Street      string    `gorm:"not null"`
	HouseNumber string    `gorm:"not null"`

	SupplierID *uuid.UUID `gorm:"type:uuid;index:idx_nodes_supplier_kind,priority:1"`
	Supplier   *Node      `gorm:"foreignKey:SupplierID;constraint:OnDelete:RESTRICT"`

	Level int             `gorm:"not null;default:0;index:idx_nodes_country_level,priority:2"`
	Debt  decimal.Decimal `gorm:"type:numeric(15,2);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Items   []Item `gorm:"foreignKey:NodeID;constraint:OnDelete:CASCADE"`
	Clients []Node `gorm:"foreignKey:SupplierID"`
}

func (Node) TableName() string { return "nodes" }

// FullAddress renders the postal address used on detail responses.
func (n *Node) FullAddress() string {
	return fmt.Sprintf("%s, %s, %s, %s", n.Country, n.City, n.Street, n.HouseNumber)
}

// IsRoot reports whether the node has no supplier.
func (n *Node) IsRoot() bool { return n.SupplierID == nil }
