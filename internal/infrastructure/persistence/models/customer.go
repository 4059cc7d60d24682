package models

import "github.com/agromart/backend/internal/domain/customer"

// AddressModel is the persistence model for saved addresses
type AddressModel struct {
	BaseModel
	UserID     string `gorm:"type:varchar(64);not null;index"`
	FullName   string `gorm:"type:varchar(200);not null"`
	Line1      string `gorm:"type:varchar(200);not null"`
	Line2      string `gorm:"type:varchar(200)"`
	City       string `gorm:"type:varchar(100);not null"`
	State      string `gorm:"type:varchar(100)"`
	PostalCode string `gorm:"type:varchar(20);not null"`
	Country    string `gorm:"type:varchar(64);not null"`
	Phone      string `gorm:"type:varchar(32)"`
}

// TableName returns the table name for GORM
func (AddressModel) TableName() string {
	return "addresses"
}

// ToDomain converts the persistence model to a domain Address
func (m *AddressModel) ToDomain() *customer.Address {
	return &customer.Address{
		BaseEntity: m.BaseModel.ToDomain(),
		UserID:     m.UserID,
		FullName:   m.FullName,
		Line1:      m.Line1,
		Line2:      m.Line2,
		City:       m.City,
		State:      m.State,
		PostalCode: m.PostalCode,
		Country:    m.Country,
		Phone:      m.Phone,
	}
}

// FromDomain populates the persistence model from a domain Address
func (m *AddressModel) FromDomain(a *customer.Address) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.UserID = a.UserID
	m.FullName = a.FullName
	m.Line1 = a.Line1
	m.Line2 = a.Line2
	m.City = a.City
	m.State = a.State
	m.PostalCode = a.PostalCode
	m.Country = a.Country
	m.Phone = a.Phone
}
