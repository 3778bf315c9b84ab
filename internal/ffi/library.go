// internal/ffi/library.go
package ffi

// Builtin header text for the two libraries spec.md §4.11 names as
// always available to FFI declarations without a user-supplied header.
const (
	LibmHeader = `double sin(double x);
double cos(double x);
double tan(double x);
double sqrt(double x);
double pow(double base, double exp);
double floor(double x);
double ceil(double x);
double fabs(double x);
double log(double x);
double exp(double x);
`

	LibcHeader = `int strcmp(const char *a, const char *b);
int strncmp(const char *a, const char *b, size_t n);
size_t strlen(const char *s);
void *malloc(size_t size);
void free(void *ptr);
int atoi(const char *s);
double atof(const char *s);
`
)

// LIBM and LIBC are the pre-parsed builtin signature tables, keyed by
// function name, consulted before falling back to a user FFI header.
var LIBM = mustParse("libm", LibmHeader)
var LIBC = mustParse("libc", LibcHeader)

func mustParse(library, header string) map[string]Signature {
	sigs, err := ParseHeader(library, header)
	if err != nil {
		panic(err)
	}
	out := make(map[string]Signature, len(sigs))
	for _, s := range sigs {
		out[s.Name] = s
	}
	return out
}

// Lookup resolves a bare function name against the builtin libm/libc
// tables; the analyzer uses it when resolving an `import NAME [from LIB]`
// declaration.
func Lookup(name string) (Signature, bool) {
	if s, ok := LIBM[name]; ok {
		return s, true
	}
	if s, ok := LIBC[name]; ok {
		return s, true
	}
	return Signature{}, false
}
