package repository

import (
	"github.com/milkroute/delivery-gateway/internal/model"
	"github.com/milkroute/delivery-gateway/pkg/docstore"
)

const customerCollection = "customers"

func toCustomerDoc(c *model.Customer) docstore.Document {
	doc := docstore.Document{
		"name":       c.Name,
		"address":    c.Address,
		"mobile":     c.Mobile,
		"created_at": encodeTime(c.CreatedAt),
	}
	if c.ID != "" {
		doc[docstore.IDField] = string(c.ID)
	}
	return doc
}

func toCustomerModel(doc docstore.Document) *model.Customer {
	if doc == nil {
		return nil
	}
	return &model.Customer{
		ID:        model.CustomerID(docString(doc, docstore.IDField)),
		Name:      docString(doc, "name"),
		Address:   docString(doc, "address"),
		Mobile:    docString(doc, "mobile"),
		CreatedAt: docTime(doc, "created_at"),
	}
}
