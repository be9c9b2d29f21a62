package listener

import (
	"context"
	"fmt"
	"sync"

	"github.com/sheetflow/listener/internal/domain/shared"
	"github.com/sheetflow/listener/internal/domain/sheet"
)

// fakePlatform is an in-memory PlatformAPI double
type fakePlatform struct {
	mu sync.Mutex

	sheets  map[string][]sheet.Sheet  // workspace ID -> sheets
	records map[string][]sheet.Record // sheet ID -> records
	secrets map[string]string         // "<env>/<name>" -> value
	csv     map[string][]byte         // sheet ID -> export payload

	appliedBlueprints map[string]sheet.Blueprint
	inserted          map[string][][]sheet.Record // sheet ID -> insert batches
	updated           map[string][][]sheet.Record

	listSheetsErr error
	insertErr     error
	updateErr     error
	exportErr     error
	applyErr      error
	secretErr     error
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		sheets:            make(map[string][]sheet.Sheet),
		records:           make(map[string][]sheet.Record),
		secrets:           make(map[string]string),
		csv:               make(map[string][]byte),
		appliedBlueprints: make(map[string]sheet.Blueprint),
		inserted:          make(map[string][][]sheet.Record),
		updated:           make(map[string][][]sheet.Record),
	}
}

func (f *fakePlatform) ApplyBlueprint(ctx context.Context, workspaceID string, bp sheet.Blueprint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.applyErr != nil {
		return f.applyErr
	}
	f.appliedBlueprints[workspaceID] = bp
	return nil
}

func (f *fakePlatform) ListSheets(ctx context.Context, workspaceID string) ([]sheet.Sheet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listSheetsErr != nil {
		return nil, f.listSheetsErr
	}
	return f.sheets[workspaceID], nil
}

func (f *fakePlatform) ListRecords(ctx context.Context, sheetID string) ([]sheet.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[sheetID], nil
}

func (f *fakePlatform) InsertRecords(ctx context.Context, sheetID string, records []sheet.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted[sheetID] = append(f.inserted[sheetID], records)
	f.records[sheetID] = append(f.records[sheetID], records...)
	return nil
}

func (f *fakePlatform) UpdateRecords(ctx context.Context, sheetID string, records []sheet.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated[sheetID] = append(f.updated[sheetID], records)
	return nil
}

func (f *fakePlatform) ExportCSV(ctx context.Context, sheetID string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.exportErr != nil {
		return nil, f.exportErr
	}
	return f.csv[sheetID], nil
}

func (f *fakePlatform) GetSecret(ctx context.Context, environmentID, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.secretErr != nil {
		return "", f.secretErr
	}
	v, ok := f.secrets[environmentID+"/"+name]
	if !ok {
		return "", fmt.Errorf("secret %q: %w", name, shared.ErrNotFound)
	}
	return v, nil
}

// fakeMailSender records sent messages
type fakeMailSender struct {
	mu      sync.Mutex
	sent    []MailMessage
	creds   []MailCredentials
	sendErr error
}

func (f *fakeMailSender) Send(ctx context.Context, creds MailCredentials, msg MailMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.creds = append(f.creds, creds)
	f.sent = append(f.sent, msg)
	return nil
}

// fakeArchiver records archived payloads
type fakeArchiver struct {
	mu         sync.Mutex
	archived   map[string][]byte
	archiveErr error
}

func newFakeArchiver() *fakeArchiver {
	return &fakeArchiver{archived: make(map[string][]byte)}
}

func (f *fakeArchiver) Archive(ctx context.Context, key string, data []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.archiveErr != nil {
		return f.archiveErr
	}
	f.archived[key] = data
	return nil
}

// fakeJournal records appended entries
type fakeJournal struct {
	mu      sync.Mutex
	entries []DeliveryEntry
}

func (f *fakeJournal) Append(ctx context.Context, entry DeliveryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeJournal) last() DeliveryEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[len(f.entries)-1]
}

// Interface compliance for the doubles
var (
	_ PlatformAPI     = (*fakePlatform)(nil)
	_ MailSender      = (*fakeMailSender)(nil)
	_ Archiver        = (*fakeArchiver)(nil)
	_ DeliveryJournal = (*fakeJournal)(nil)
)
