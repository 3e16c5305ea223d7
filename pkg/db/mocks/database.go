package mocks

import (
	kdb "github.com/opst/taskboard/pkg/db"
)

// Database bundles mocks of each interface.
type Database struct {
	MockUsers        *UserInterface
	MockTeams        *TeamInterface
	MockTasks        *TaskInterface
	MockReminders    *ReminderInterface
	MockSettings     *SettingsInterface
	MockIntegrations *IntegrationInterface
	MockKeychain     *KeychainInterface
	MockSchema       *SchemaInterface
}

var _ kdb.Database = &Database{}

func NewDatabase() *Database {
	return &Database{
		MockUsers:        NewUserInterface(),
		MockTeams:        NewTeamInterface(),
		MockTasks:        NewTaskInterface(),
		MockReminders:    NewReminderInterface(),
		MockSettings:     NewSettingsInterface(),
		MockIntegrations: NewIntegrationInterface(),
		MockKeychain:     NewKeychainInterface(),
		MockSchema:       NewSchemaInterface(),
	}
}

func (d *Database) Users() kdb.UserInterface               { return d.MockUsers }
func (d *Database) Teams() kdb.TeamInterface               { return d.MockTeams }
func (d *Database) Tasks() kdb.TaskInterface               { return d.MockTasks }
func (d *Database) Reminders() kdb.ReminderInterface       { return d.MockReminders }
func (d *Database) Settings() kdb.SettingsInterface        { return d.MockSettings }
func (d *Database) Integrations() kdb.IntegrationInterface { return d.MockIntegrations }
func (d *Database) Keychain() kdb.KeychainInterface        { return d.MockKeychain }
func (d *Database) Schema() kdb.SchemaInterface            { return d.MockSchema }
func (d *Database) Close() error                           { return nil }
