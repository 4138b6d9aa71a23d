package models

// All lists every model in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&Session{},
		&Case{},
		&Proceeding{},
		&AuditLog{},
	}
}
