// Package resource declares the serializers exposed by the API.
package resource

import (
	"github.com/penshort/roster/internal/model"
	"github.com/penshort/roster/internal/serializer"
)

// UserFields are the declared fields of the User serializer.
var UserFields = []string{"id", "first", "email", "is_active", "phone"}

// ReceiverUserFields narrows the user nested inside a Receiver.
var ReceiverUserFields = []string{"first", "email"}

// UserDefinition declares the User serializer.
func UserDefinition() serializer.Definition {
	return serializer.Definition{
		Name:   "User",
		Model:  model.User{},
		Fields: UserFields,
	}
}

// NewUserSerializer builds a User serializer, optionally narrowed.
func NewUserSerializer(opts ...serializer.Option) *serializer.Serializer {
	return serializer.MustNew(UserDefinition(), opts...)
}

// ReceiverDefinition declares the Receiver serializer. The nested user is
// rendered through a User serializer narrowed to ReceiverUserFields.
func ReceiverDefinition() serializer.Definition {
	return serializer.Definition{
		Name:   "Receiver",
		Model:  model.Receiver{},
		Fields: []string{"id", "receiver"},
		Nested: map[string]*serializer.Serializer{
			"receiver": NewUserSerializer(serializer.WithFields(ReceiverUserFields...)),
		},
	}
}

// NewReceiverSerializer builds a Receiver serializer, optionally narrowed.
func NewReceiverSerializer(opts ...serializer.Option) *serializer.Serializer {
	return serializer.MustNew(ReceiverDefinition(), opts...)
}
