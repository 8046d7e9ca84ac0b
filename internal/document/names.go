package document

import (
	"reflect"
	"strings"
)

func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// fieldPath drops the root struct name from a validator namespace,
// "Traveller.home.city" becomes "home.city".
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}
