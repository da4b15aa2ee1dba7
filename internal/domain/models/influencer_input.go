// internal/domain/models/influencer_input.go
package models

import (
	"github.com/dalemusser/influencerhub/internal/domain/opt"
)

// InfluencerInput is a create body or a partial update. Every field is
// optional; only present fields are written.
//
// ID is accepted so that clients echoing a record back do not fail to
// decode, but it is always dropped before a write.
type InfluencerInput struct {
	ID opt.Value[string] `json:"id,omitzero" yaml:"id"`

	Email     opt.Value[string] `json:"email,omitzero" yaml:"email"`
	Name      opt.Value[string] `json:"name,omitzero" yaml:"name"`
	Country   opt.Value[string] `json:"country,omitzero" yaml:"country"`
	Address   opt.Value[string] `json:"address,omitzero" yaml:"address"`
	BirthDate opt.Value[string] `json:"birthDate,omitzero" yaml:"birthDate"`

	Phone1      opt.Value[string] `json:"phone1,omitzero" yaml:"phone1"`
	Phone2      opt.Value[string] `json:"phone2,omitzero" yaml:"phone2"`
	Profession  opt.Value[string] `json:"profession,omitzero" yaml:"profession"`
	CivilStatus opt.Value[string] `json:"civilStatus,omitzero" yaml:"civilStatus"`

	TaxpayerType  opt.Value[string] `json:"taxpayerType,omitzero" yaml:"taxpayerType"`
	FacturaSimple opt.Value[Flag]   `json:"facturaSimple,omitzero" yaml:"facturaSimple"`
	IDNumber      opt.Value[string] `json:"idNumber,omitzero" yaml:"idNumber"`
	InvoiceNote   opt.Value[string] `json:"invoiceNote,omitzero" yaml:"invoiceNote"`

	Bank            opt.Value[string] `json:"bank,omitzero" yaml:"bank"`
	AccountName     opt.Value[string] `json:"accountName,omitzero" yaml:"accountName"`
	AccountNumber   opt.Value[string] `json:"accountNumber,omitzero" yaml:"accountNumber"`
	AccountType     opt.Value[string] `json:"accountType,omitzero" yaml:"accountType"`
	AccountCurrency opt.Value[string] `json:"accountCurrency,omitzero" yaml:"accountCurrency"`
	Swift           opt.Value[string] `json:"swift,omitzero" yaml:"swift"`

	CampaignNote opt.Value[string] `json:"campaignNote,omitzero" yaml:"campaignNote"`

	Handles opt.Value[HandlesInput] `json:"handles,omitzero" yaml:"handles"`

	// Clients sometimes echo timestamps back; they are never honored.
	CreatedAt opt.Value[any] `json:"createdAt,omitzero" yaml:"createdAt"`
	UpdatedAt opt.Value[any] `json:"updatedAt,omitzero" yaml:"updatedAt"`
}

// HandlesInput is the write shape of Handles.
type HandlesInput struct {
	Instagram opt.Value[string] `json:"instagram,omitzero" yaml:"instagram"`
	TikTok    opt.Value[string] `json:"tiktok,omitzero" yaml:"tiktok"`
	YouTube   opt.Value[string] `json:"youtube,omitzero" yaml:"youtube"`
}

// Doc flattens the input into a document keyed by stored field names.
// Absent fields carry opt.Absent; callers must sanitize before writing.
// The client-supplied ID and timestamps are not included.
func (in InfluencerInput) Doc() map[string]any {
	d := map[string]any{
		"email":           in.Email.Any(),
		"name":            in.Name.Any(),
		"country":         in.Country.Any(),
		"address":         in.Address.Any(),
		"birthDate":       in.BirthDate.Any(),
		"phone1":          in.Phone1.Any(),
		"phone2":          in.Phone2.Any(),
		"profession":      in.Profession.Any(),
		"civilStatus":     in.CivilStatus.Any(),
		"taxpayerType":    in.TaxpayerType.Any(),
		"idNumber":        in.IDNumber.Any(),
		"invoiceNote":     in.InvoiceNote.Any(),
		"bank":            in.Bank.Any(),
		"accountName":     in.AccountName.Any(),
		"accountNumber":   in.AccountNumber.Any(),
		"accountType":     in.AccountType.Any(),
		"accountCurrency": in.AccountCurrency.Any(),
		"swift":           in.Swift.Any(),
		"campaignNote":    in.CampaignNote.Any(),
		FieldHandles:      opt.Absent,
		"facturaSimple":   opt.Absent,
	}
	if f, ok := in.FacturaSimple.Get(); ok {
		d["facturaSimple"] = f.Value()
	}
	if h, ok := in.Handles.Get(); ok {
		d[FieldHandles] = map[string]any{
			"instagram": h.Instagram.Any(),
			"tiktok":    h.TikTok.Any(),
			"youtube":   h.YouTube.Any(),
		}
	}
	return d
}

// DerivationSource returns the stored fields that derived values are
// computed from, as an input. Used to recompute derived fields for records
// written by older code.
func DerivationSource(r Influencer) InfluencerInput {
	in := InfluencerInput{}
	if r.Email != "" {
		in.Email = opt.Some(r.Email)
	}
	if r.Name != "" {
		in.Name = opt.Some(r.Name)
	}
	if r.Handles != nil {
		h := HandlesInput{}
		if r.Handles.Instagram != "" {
			h.Instagram = opt.Some(r.Handles.Instagram)
		}
		if r.Handles.TikTok != "" {
			h.TikTok = opt.Some(r.Handles.TikTok)
		}
		if r.Handles.YouTube != "" {
			h.YouTube = opt.Some(r.Handles.YouTube)
		}
		in.Handles = opt.Some(h)
	}
	return in
}
