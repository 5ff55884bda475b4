package postgres

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isDuplicateKey recognizes unique-constraint violations. Dialects that
// implement gorm's ErrorTranslator return gorm.ErrDuplicatedKey when the DB
// is opened with TranslateError; the message checks cover the rest.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}

// duplicateField reports which column of table a unique violation was raised
// for. Postgres and MySQL name the index (idx_<table>_<column>); SQLite names
// the column as <table>.<column>. Only those identifiers are matched, since
// MySQL also echoes the duplicated value.
func duplicateField(err error, table string, candidates ...string) string {
	msg := strings.ToLower(err.Error())
	for _, c := range candidates {
		if containsIdent(msg, "idx_"+table+"_"+c) {
			return c
		}
	}
	for _, c := range candidates {
		if containsIdent(msg, table+"."+c) {
			return c
		}
	}
	return ""
}

// containsIdent reports whether ident occurs in msg not followed by another
// identifier character, so idx_users_email does not match idx_users_email2.
func containsIdent(msg, ident string) bool {
	for i := 0; ; {
		j := strings.Index(msg[i:], ident)
		if j < 0 {
			return false
		}
		end := i + j + len(ident)
		if end == len(msg) || !isIdentByte(msg[end]) {
			return true
		}
		i = end
	}
}

func isIdentByte(b byte) bool {
	return b == '_' || ('a' <= b && b <= 'z') || ('0' <= b && b <= '9')
}
