package repository

import (
	"github.com/milkroute/delivery-gateway/internal/model"
	"github.com/milkroute/delivery-gateway/pkg/docstore"
)

const userCollection = "users"

func toUserDoc(u *model.User) docstore.Document {
	doc := docstore.Document{
		"username":   u.Username,
		"password":   u.PasswordHash,
		"role":       string(u.Role),
		"name":       u.Name,
		"created_at": encodeTime(u.CreatedAt),
	}
	if u.ID != "" {
		doc[docstore.IDField] = string(u.ID)
	}
	return doc
}

func toUserModel(doc docstore.Document) *model.User {
	if doc == nil {
		return nil
	}
	return &model.User{
		ID:           model.UserID(docString(doc, docstore.IDField)),
		Username:     docString(doc, "username"),
		PasswordHash: docString(doc, "password"),
		Role:         model.Role(docString(doc, "role")),
		Name:         docString(doc, "name"),
		CreatedAt:    docTime(doc, "created_at"),
	}
}
