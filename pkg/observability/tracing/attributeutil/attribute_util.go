/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package attributeutil

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.opentelemetry.io/otel/attribute"
)

// Redacted replaces sensitive values in span attributes.
const Redacted = "[REDACTED]"

// JSON returns attribute with the value marshaled to JSON. Private key material and other secrets are
// hidden with the WithRedacted option.
func JSON(key string, value interface{}, opts ...Opt) attribute.KeyValue {
	op := newOptions(opts)

	b, err := json.Marshal(value)
	if err != nil {
		return attribute.KeyValue{Key: attribute.Key(key)}
	}

	for _, path := range op.redacted {
		if gjson.GetBytes(b, path).Exists() {
			b, _ = sjson.SetBytes(b, path, Redacted)
		}
	}

	return attribute.String(key, string(b))
}

// FormParams returns attribute with the query or form params of a request, sorted by name.
func FormParams(key string, params map[string][]string, opts ...Opt) attribute.KeyValue {
	op := newOptions(opts)

	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}

	sort.Strings(names)

	pairs := make([]string, 0, len(names))

	for _, k := range names {
		v := strings.Join(params[k], ",")
		if op.isRedacted(k) {
			v = Redacted
		}

		pairs = append(pairs, k+"="+v)
	}

	return attribute.String(key, strings.Join(pairs, "&"))
}

type options struct {
	redacted []string
}

func newOptions(opts []Opt) *options {
	op := &options{}

	for _, opt := range opts {
		opt(op)
	}

	return op
}

func (o *options) isRedacted(key string) bool {
	return lo.Contains(o.redacted, key)
}

type Opt func(*options)

// WithRedacted hides the values of the given keys behind [REDACTED]. For JSON attributes a key is a
// gjson path (https://github.com/tidwall/gjson/blob/master/SYNTAX.md).
func WithRedacted(keys ...string) Opt {
	return func(o *options) {
		o.redacted = append(o.redacted, keys...)
	}
}
