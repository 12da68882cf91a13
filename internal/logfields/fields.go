/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package logfields

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log Fields.
const (
	FieldAlgorithm    = "algorithm"
	FieldCallerID     = "callerIdentifier"
	FieldCallerPolicy = "callerPolicy"
	FieldCount        = "count"
	FieldDatabaseType = "databaseType"
	FieldDomain       = "domain"
	FieldDuration     = "duration"
	FieldErrorCode    = "errorCode"
	FieldIdentifier   = "identifier"
	FieldKeyID        = "keyID"
	FieldKeyUse       = "keyUse"
	FieldOperation    = "operation"
	FieldSchemaID     = "schemaID"
	FieldServiceID    = "serviceID"
	FieldSleep        = "sleep"
	FieldStoreName    = "storeName"
	FieldUserLogLevel = "userLogLevel"
	FieldCaller       = "callerIdentity"
)

// WithAlgorithm sets the key algorithm field.
func WithAlgorithm(value string) zap.Field {
	return zap.String(FieldAlgorithm, value)
}

// WithCallerID sets the caller identifier field.
func WithCallerID(value string) zap.Field {
	return zap.String(FieldCallerID, value)
}

// WithCallerPolicy sets the caller policy field.
func WithCallerPolicy(value string) zap.Field {
	return zap.String(FieldCallerPolicy, value)
}

// WithCaller sets the caller field from any value carrying the caller identity.
func WithCaller(caller interface{}) zap.Field {
	return zap.Inline(NewObjectMarshaller(FieldCaller, caller))
}

// WithCount sets the count field.
func WithCount(value int) zap.Field {
	return zap.Int(FieldCount, value)
}

// WithDatabaseType sets the database type field.
func WithDatabaseType(value string) zap.Field {
	return zap.String(FieldDatabaseType, value)
}

// WithDomain sets the domain field.
func WithDomain(value string) zap.Field {
	return zap.String(FieldDomain, value)
}

// WithDuration sets the duration field.
func WithDuration(value time.Duration) zap.Field {
	return zap.Duration(FieldDuration, value)
}

// WithErrorCode sets the error code field.
func WithErrorCode(value string) zap.Field {
	return zap.String(FieldErrorCode, value)
}

// WithIdentifier sets the identifier field.
func WithIdentifier(value string) zap.Field {
	return zap.String(FieldIdentifier, value)
}

// WithKeyID sets the key id field.
func WithKeyID(value string) zap.Field {
	return zap.String(FieldKeyID, value)
}

// WithKeyUse sets the key use field.
func WithKeyUse(value string) zap.Field {
	return zap.String(FieldKeyUse, value)
}

// WithOperation sets the operation field.
func WithOperation(value string) zap.Field {
	return zap.String(FieldOperation, value)
}

// WithSchemaID sets the JSON schema id field.
func WithSchemaID(value string) zap.Field {
	return zap.String(FieldSchemaID, value)
}

// WithServiceID sets the service id field.
func WithServiceID(value string) zap.Field {
	return zap.String(FieldServiceID, value)
}

// WithSleep sets the sleep field.
func WithSleep(value time.Duration) zap.Field {
	return zap.Duration(FieldSleep, value)
}

// WithStoreName sets the store name field.
func WithStoreName(value string) zap.Field {
	return zap.String(FieldStoreName, value)
}

// WithUserLogLevel sets the UserLogLevel field.
func WithUserLogLevel(logLevel string) zap.Field {
	return zap.String(FieldUserLogLevel, logLevel)
}

// ObjectMarshaller uses reflection to marshal an object's fields.
type ObjectMarshaller struct {
	key string
	obj interface{}
}

// NewObjectMarshaller returns a new ObjectMarshaller.
func NewObjectMarshaller(key string, obj interface{}) *ObjectMarshaller {
	return &ObjectMarshaller{key: key, obj: obj}
}

// MarshalLogObject marshals the object's fields.
func (m *ObjectMarshaller) MarshalLogObject(e zapcore.ObjectEncoder) error {
	return e.AddReflected(m.key, m.obj)
}
