// internal/domain/models/influencer.go
package models

import "time"

// Influencer is a roster entry as read back from the store.
//
// NOTE:
//   - ID is assigned by the store and is never part of a stored body.
//   - emailLower, nameLower, search_name, keywords and handleLower are
//     derived at write time (see normalize.DeriveFields). Records written
//     before normalization existed may lack them.
type Influencer struct {
	ID string `bson:"-" json:"id"`

	Email     string `bson:"email,omitempty" json:"email,omitempty"`
	Name      string `bson:"name,omitempty" json:"name,omitempty"`
	Country   string `bson:"country,omitempty" json:"country,omitempty"`
	Address   string `bson:"address,omitempty" json:"address,omitempty"`
	BirthDate string `bson:"birthDate,omitempty" json:"birthDate,omitempty"`

	Phone1      string `bson:"phone1,omitempty" json:"phone1,omitempty"`
	Phone2      string `bson:"phone2,omitempty" json:"phone2,omitempty"`
	Profession  string `bson:"profession,omitempty" json:"profession,omitempty"`
	CivilStatus string `bson:"civilStatus,omitempty" json:"civilStatus,omitempty"`

	TaxpayerType  string `bson:"taxpayerType,omitempty" json:"taxpayerType,omitempty"`
	FacturaSimple any    `bson:"facturaSimple,omitempty" json:"facturaSimple,omitempty"` // bool or string
	IDNumber      string `bson:"idNumber,omitempty" json:"idNumber,omitempty"`
	InvoiceNote   string `bson:"invoiceNote,omitempty" json:"invoiceNote,omitempty"`

	Bank            string `bson:"bank,omitempty" json:"bank,omitempty"`
	AccountName     string `bson:"accountName,omitempty" json:"accountName,omitempty"`
	AccountNumber   string `bson:"accountNumber,omitempty" json:"accountNumber,omitempty"`
	AccountType     string `bson:"accountType,omitempty" json:"accountType,omitempty"`
	AccountCurrency string `bson:"accountCurrency,omitempty" json:"accountCurrency,omitempty"`
	Swift           string `bson:"swift,omitempty" json:"swift,omitempty"`

	CampaignNote string `bson:"campaignNote,omitempty" json:"campaignNote,omitempty"`

	Handles *Handles `bson:"handles,omitempty" json:"handles,omitempty"`

	// Derived lookup fields.
	EmailLower  string   `bson:"emailLower,omitempty" json:"emailLower,omitempty"`
	NameLower   string   `bson:"nameLower,omitempty" json:"nameLower,omitempty"`
	SearchName  string   `bson:"search_name,omitempty" json:"search_name,omitempty"`
	Keywords    []string `bson:"keywords,omitempty" json:"keywords,omitempty"`
	HandleLower string   `bson:"handleLower,omitempty" json:"handleLower,omitempty"`

	CreatedAt *time.Time `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt *time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// Handles are social-media handles. Priority for handleLower is
// Instagram, then TikTok, then YouTube.
type Handles struct {
	Instagram string `bson:"instagram,omitempty" json:"instagram,omitempty"`
	TikTok    string `bson:"tiktok,omitempty" json:"tiktok,omitempty"`
	YouTube   string `bson:"youtube,omitempty" json:"youtube,omitempty"`
}

// Stored field names. Derived names keep the spelling already present in
// production data (search_name is snake_case there).
const (
	FieldEmail       = "email"
	FieldName        = "name"
	FieldEmailLower  = "emailLower"
	FieldNameLower   = "nameLower"
	FieldSearchName  = "search_name"
	FieldKeywords    = "keywords"
	FieldHandleLower = "handleLower"
	FieldHandles     = "handles"
	FieldCreatedAt   = "createdAt"
	FieldUpdatedAt   = "updatedAt"
	FieldID          = "id"
)
