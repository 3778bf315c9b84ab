// internal/ffi/header.go
package ffi

import (
	"fmt"
	"strings"

	"warpc/internal/errors"
)

// ParseHeader parses a restricted C header: one declaration per
// non-blank, non-comment line, of the shape
//
//	<ret-type> <name>(<type>[, <type>]*);
//
// recognising the types spec.md §4.11 lists: void, int, long, float,
// double, size_t, char*, const char*, int*, plus void* (read as int*). This is intentionally
// far narrower than a real C parser — enough to describe libm/libc entry
// points, nothing more.
func ParseHeader(library, source string) ([]Signature, error) {
	var out []Signature
	for lineNo, line := range strings.Split(source, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSuffix(line, ";")
		open := strings.IndexByte(line, '(')
		close := strings.LastIndexByte(line, ')')
		if open < 0 || close < open {
			return nil, errors.NewSyntaxError(
				fmt.Sprintf("malformed FFI declaration: %q", line), library, lineNo+1, 1,
			)
		}
		head := strings.TrimSpace(line[:open])
		argList := strings.TrimSpace(line[open+1 : close])

		retType, name, err := splitDeclarator(head)
		if err != nil {
			return nil, errors.NewSyntaxError(err.Error(), library, lineNo+1, 1)
		}

		var params []CType
		if argList != "" && argList != "void" {
			for _, part := range strings.Split(argList, ",") {
				ct, err := parseParamType(strings.TrimSpace(part))
				if err != nil {
					return nil, errors.NewSyntaxError(err.Error(), library, lineNo+1, 1)
				}
				params = append(params, ct)
			}
		}
		results := []CType{retType}
		if retType == CVoid {
			results = nil
		}

		sig := Signature{Library: library, Name: name}
		for _, p := range params {
			sig.Params = append(sig.Params, p.ValType())
		}
		for _, r := range results {
			sig.Results = append(sig.Results, r.ValType())
		}
		out = append(out, sig)
	}
	return out, nil
}

// splitDeclarator pulls the trailing identifier (the function name) off
// a "<type> name" head, tolerating a '*' glued to either side.
func splitDeclarator(head string) (CType, string, error) {
	spaced := strings.ReplaceAll(head, "*", " * ")
	fields := strings.Fields(spaced)
	if len(fields) == 0 {
		return 0, "", fmt.Errorf("missing return type and name")
	}
	name := fields[len(fields)-1]
	typeFields := fields[:len(fields)-1]
	typeText := strings.Join(typeFields, " ")
	if typeText == "" {
		typeText = "int"
	}
	ct, err := parseCType(typeText)
	if err != nil {
		return 0, "", err
	}
	return ct, name, nil
}

// parseParamType strips the trailing parameter name (e.g. "const char *a"
// -> "const char *") before delegating to parseCType, the same way
// splitDeclarator strips a function name off a return-type head.
func parseParamType(text string) (CType, error) {
	spaced := strings.ReplaceAll(text, "*", " * ")
	fields := strings.Fields(spaced)
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty parameter declaration")
	}
	if fields[len(fields)-1] != "*" {
		fields = fields[:len(fields)-1]
	}
	return parseCType(strings.Join(fields, " "))
}

func parseCType(text string) (CType, error) {
	text = strings.Join(strings.Fields(text), " ")
	switch text {
	case "void":
		return CVoid, nil
	case "int":
		return CInt, nil
	case "long":
		return CLong, nil
	case "float":
		return CFloat, nil
	case "double":
		return CDouble, nil
	case "size_t":
		return CSizeT, nil
	case "char *", "char*":
		return CCharPtr, nil
	case "const char *", "const char*":
		return CConstCharPtr, nil
	case "int *", "int*":
		return CIntPtr, nil
	case "void *", "void*":
		return CIntPtr, nil
	default:
		return 0, fmt.Errorf("unsupported FFI type %q", text)
	}
}
