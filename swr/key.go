package swr

import (
	"fmt"
	"reflect"
	"runtime"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/hashstructure/v2"
)

// functionIdentity returns a textual identity for fn, stable for the life of
// the process: the fully qualified function name when resolvable, otherwise
// the value's type.
func functionIdentity(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() == reflect.Func {
		if f := runtime.FuncForPC(v.Pointer()); f != nil {
			return f.Name()
		}
	}
	return fmt.Sprintf("%T", fn)
}

// buildFixedKey derives the per-wrap key from the function identity and the
// caller's static key parts. Constant across all calls to one wrapped
// function.
func buildFixedKey(identity string, keyParts []string) string {
	return identity + "-" + strings.Join(keyParts, ",")
}

// buildInvocationKey appends a deterministic encoding of the call arguments
// to the fixed key. The encoding is a structural 64-bit hash (hashstructure
// FormatV2), so structurally equal argument lists always produce the same
// key; it is not collision-free for pathological inputs.
func buildInvocationKey(fixedKey string, args []any) (string, error) {
	h, err := hashstructure.Hash(args, hashstructure.FormatV2, nil)
	if err != nil {
		return "", errors.Wrapf(err, "swr: failed to encode arguments for %s", fixedKey)
	}
	return fixedKey + "-" + strconv.FormatUint(h, 16), nil
}
