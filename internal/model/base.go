package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// assignID gives a record a client-side UUID before insert so the same
// models work on PostgreSQL and on the SQLite test database.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (c *Company) BeforeCreate(_ *gorm.DB) error            { assignID(&c.ID); return nil }
func (d *CompanyDaySchedule) BeforeCreate(_ *gorm.DB) error { assignID(&d.ID); return nil }
func (u *User) BeforeCreate(_ *gorm.DB) error               { assignID(&u.ID); return nil }
func (t *Table) BeforeCreate(_ *gorm.DB) error              { assignID(&t.ID); return nil }
func (m *TableMaintenance) BeforeCreate(_ *gorm.DB) error   { assignID(&m.ID); return nil }
func (s *TableSession) BeforeCreate(_ *gorm.DB) error       { assignID(&s.ID); return nil }
func (t *TrackedItem) BeforeCreate(_ *gorm.DB) error        { assignID(&t.ID); return nil }
func (c *InventoryCategory) BeforeCreate(_ *gorm.DB) error  { assignID(&c.ID); return nil }
func (i *InventoryItem) BeforeCreate(_ *gorm.DB) error      { assignID(&i.ID); return nil }
func (m *StockMovement) BeforeCreate(_ *gorm.DB) error      { assignID(&m.ID); return nil }
func (o *PosOrder) BeforeCreate(_ *gorm.DB) error           { assignID(&o.ID); return nil }
func (i *PosOrderItem) BeforeCreate(_ *gorm.DB) error       { assignID(&i.ID); return nil }
func (e *Expense) BeforeCreate(_ *gorm.DB) error            { assignID(&e.ID); return nil }
func (r *FinancialReport) BeforeCreate(_ *gorm.DB) error    { assignID(&r.ID); return nil }

// All lists every persisted model in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&Company{},
		&CompanyDaySchedule{},
		&User{},
		&Table{},
		&TableMaintenance{},
		&TableSession{},
		&InventoryCategory{},
		&InventoryItem{},
		&StockMovement{},
		&TrackedItem{},
		&PosOrder{},
		&PosOrderItem{},
		&Expense{},
		&FinancialReport{},
	}
}
