// Copyright © 2024 The moqls authors

package typename

var keywordTypes = map[string]string{
	"bool":    "System.Boolean",
	"byte":    "System.Byte",
	"sbyte":   "System.SByte",
	"char":    "System.Char",
	"decimal": "System.Decimal",
	"double":  "System.Double",
	"float":   "System.Single",
	"int":     "System.Int32",
	"uint":    "System.UInt32",
	"nint":    "System.IntPtr",
	"nuint":   "System.UIntPtr",
	"long":    "System.Int64",
	"ulong":   "System.UInt64",
	"short":   "System.Int16",
	"ushort":  "System.UInt16",
	"object":  "System.Object",
	"string":  "System.String",
	"void":    "System.Void",
}

var aliasTypes = func() map[string]string {
	m := make(map[string]string, len(keywordTypes))
	for k, v := range keywordTypes {
		m[v] = k
	}
	return m
}()

// Keyword returns the System type a C# keyword stands for.
func Keyword(name string) (string, bool) {
	q, ok := keywordTypes[name]
	return q, ok
}

// Alias returns the C# keyword for a System type name.
func Alias(qualified string) (string, bool) {
	k, ok := aliasTypes[qualified]
	return k, ok
}

// IsValueKeyword reports whether the keyword names a value type.
func IsValueKeyword(name string) bool {
	switch name {
	case "object", "string", "void":
		return false
	}
	_, ok := keywordTypes[name]
	return ok
}
