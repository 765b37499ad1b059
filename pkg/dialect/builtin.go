package dialect

// Builtin dialects. All current targets share the standard ON CONFLICT
// upsert form; they differ in default schema and identifier quoting.

func init() {
	Register(&Dialect{
		Name:          "ansi",
		DefaultSchema: "public",
		IdentQuote:    `"`,
	})
	Register(&Dialect{
		Name:          "sqlite",
		DefaultSchema: "main",
		IdentQuote:    `"`,
	})
	Register(&Dialect{
		Name:          "duckdb",
		DefaultSchema: "main",
		IdentQuote:    `"`,
	})
	Register(&Dialect{
		Name:          "postgres",
		DefaultSchema: "public",
		IdentQuote:    `"`,
	})
}
