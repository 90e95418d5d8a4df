package querysql

import "strings"

// Keywords neither dialect accepts as a bare table or column name.
var commonReserved = wordSet(`
	ALL AND AS ASC BETWEEN BY CASE CAST CHECK CONSTRAINT CREATE DEFAULT
	DELETE DESC DISTINCT DROP ELSE END EXCEPT EXISTS FOREIGN FROM GROUP
	HAVING IN INSERT INTERSECT INTO IS JOIN LIMIT NOT NULL ON OR ORDER
	PRIMARY REFERENCES SELECT SET TABLE THEN UNION UNIQUE UPDATE USER
	VALUES WHEN WHERE`)

// Keywords reserved by one dialect only.
var dialectReserved = map[Dialect]map[string]bool{
	DialectSQLite: wordSet(`
		ABORT AUTOINCREMENT COLLATE COMMIT ESCAPE GLOB INDEX INDEXED ISNULL
		NOTNULL OFFSET PRAGMA RAISE REGEXP TRANSACTION VACUUM`),
	DialectPostgres: wordSet(`
		ANALYSE ANALYZE ARRAY ASYMMETRIC BOTH COLLATE COLUMN CURRENT_DATE
		CURRENT_TIME CURRENT_TIMESTAMP CURRENT_USER DO FALSE FETCH FOR GRANT
		LATERAL LEADING OFFSET ONLY PLACING RETURNING SYMMETRIC TO TRAILING
		TRUE VARIADIC WINDOW WITH`),
}

func wordSet(words string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(words) {
		set[w] = true
	}
	return set
}

// quoteIdent double-quotes name when the dialect cannot take it bare.
func (c *SQLCompiler) quoteIdent(name string) string {
	if !c.needsQuoting(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteRef quotes each segment of a dotted reference, leaving * alone.
func (c *SQLCompiler) quoteRef(ref string) string {
	parts := strings.Split(ref, ".")
	for i, p := range parts {
		if p != "*" {
			parts[i] = c.quoteIdent(p)
		}
	}
	return strings.Join(parts, ".")
}

// needsQuoting reports whether name is not a plain identifier or is
// reserved. Postgres folds bare identifiers to lower case, so there any
// upper-case letter also forces quoting.
func (c *SQLCompiler) needsQuoting(name string) bool {
	if name == "" || isDigit(name[0]) {
		return true
	}
	for i := 0; i < len(name); i++ {
		ch := name[i]
		switch {
		case ch == '_' || isDigit(ch) || (ch >= 'a' && ch <= 'z'):
		case ch >= 'A' && ch <= 'Z':
			if c.Dialect == DialectPostgres {
				return true
			}
		default:
			return true
		}
	}
	upper := strings.ToUpper(name)
	return commonReserved[upper] || dialectReserved[c.Dialect][upper]
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
