package models

import "time"

// Entity — общий контракт сущностей каталога.
type Entity interface {
	GetID() *int64
	SetID(id *int64)
	AuditInfo() *Audit
}

// Model связывает тип сущности с указателем на него для дженерик-слоёв.
type Model[T any] interface {
	*T
	Entity
}

// Identity — первичный ключ, выдаётся базой.
type Identity struct {
	ID *int64 `db:"id" json:"id"`
}

func (i *Identity) GetID() *int64 {
	return i.ID
}

func (i *Identity) SetID(id *int64) {
	i.ID = id
}

// Audit — поля аудита, общие для всех сущностей.
type Audit struct {
	CreatedDate      *time.Time `db:"created_date" json:"createdDate" validate:"required"`
	LastModifiedDate *time.Time `db:"last_modified_date" json:"lastModifiedDate"`
	CreatedBy        *string    `db:"created_by" json:"createdBy" validate:"omitempty,max=50"`
	LastModifiedBy   *string    `db:"last_modified_by" json:"lastModifiedBy" validate:"omitempty,max=50"`
}

func (a *Audit) AuditInfo() *Audit {
	return a
}

// StampCreated проставляет автора, если клиент его не передал.
func (a *Audit) StampCreated(login string) {
	if login != "" && a.CreatedBy == nil {
		a.CreatedBy = &login
	}
}

// StampModified проставляет автора и время изменения, если клиент их не передал.
func (a *Audit) StampModified(login string, now time.Time) {
	if login == "" {
		return
	}
	if a.LastModifiedBy == nil {
		a.LastModifiedBy = &login
	}
	if a.LastModifiedDate == nil {
		a.LastModifiedDate = &now
	}
}
