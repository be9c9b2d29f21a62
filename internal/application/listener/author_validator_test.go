package listener

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sheetflow/listener/internal/domain/sheet"
)

func authorRecord(id, author string) sheet.Record {
	rec := sheet.NewRecord(id)
	rec.Set(sheet.AuthorField, author)
	return rec
}

func TestAuthorValidatorHandler_WellFormedIsNoOp(t *testing.T) {
	platform := newFakePlatform()
	platform.records["sheet-1"] = []sheet.Record{
		authorRecord("r1", "Smith, John"),
		authorRecord("r2", "O'Brien, Seán"),
	}
	journal := &fakeJournal{}
	h := NewAuthorValidatorHandler(platform, journal, zap.NewNop(), 100)

	err := h.Handle(context.Background(), sheet.NewSheetValidateEvent("dlv-1", "ws-1", "env-1", "sheet-1"))

	require.NoError(t, err)
	assert.Empty(t, platform.updated["sheet-1"], "well-formed records must not be written back")
	assert.Equal(t, OutcomeCompleted, journal.last().Outcome)
}

func TestAuthorValidatorHandler_RewritesAndAnnotates(t *testing.T) {
	platform := newFakePlatform()
	platform.records["sheet-1"] = []sheet.Record{
		authorRecord("r1", "John Smith"),
		authorRecord("r2", "Smith, John"),
	}
	h := NewAuthorValidatorHandler(platform, nil, zap.NewNop(), 100)

	err := h.Handle(context.Background(), sheet.NewSheetValidateEvent("dlv-2", "ws-1", "env-1", "sheet-1"))

	require.NoError(t, err)
	require.Len(t, platform.updated["sheet-1"], 1)
	batch := platform.updated["sheet-1"][0]
	require.Len(t, batch, 1, "only the rewritten record is written back")

	patched := batch[0]
	assert.Equal(t, "r1", patched.ID)
	assert.Equal(t, "Smith, John", patched.StringValue(sheet.AuthorField))
	fv, _ := patched.Get(sheet.AuthorField)
	require.Len(t, fv.Messages, 1)
	assert.Equal(t, sheet.MessageInfo, fv.Messages[0].Kind)
}

func TestAuthorValidatorHandler_SourceRecordsNotMutated(t *testing.T) {
	platform := newFakePlatform()
	src := authorRecord("r1", "John Smith")
	platform.records["sheet-1"] = []sheet.Record{src}
	h := NewAuthorValidatorHandler(platform, nil, zap.NewNop(), 100)

	err := h.Handle(context.Background(), sheet.NewSheetValidateEvent("dlv-3", "ws-1", "env-1", "sheet-1"))

	require.NoError(t, err)
	assert.Equal(t, "John Smith", src.StringValue(sheet.AuthorField))
	fv, _ := src.Get(sheet.AuthorField)
	assert.Empty(t, fv.Messages)
}

func TestAuthorValidatorHandler_SingleTokenIsError(t *testing.T) {
	platform := newFakePlatform()
	platform.records["sheet-1"] = []sheet.Record{
		authorRecord("r1", "Cher"),
		authorRecord("r2", "John Smith"),
	}
	journal := &fakeJournal{}
	h := NewAuthorValidatorHandler(platform, journal, zap.NewNop(), 100)

	err := h.Handle(context.Background(), sheet.NewSheetValidateEvent("dlv-4", "ws-1", "env-1", "sheet-1"))

	require.NoError(t, err)
	entry := journal.last()
	assert.Equal(t, OutcomeCompletedWithErrors, entry.Outcome)
	require.Len(t, entry.RecordErrors, 1)
	assert.Equal(t, sheet.ErrCodeInvalidFormat, entry.RecordErrors[0].Code)
	assert.Equal(t, "r1", entry.RecordErrors[0].RecordID)
	// The valid record is still patched
	require.Len(t, platform.updated["sheet-1"], 1)
}

func TestAuthorValidatorHandler_StrayCommaTokenIsError(t *testing.T) {
	platform := newFakePlatform()
	platform.records["sheet-1"] = []sheet.Record{
		// A space before the comma makes the comma its own token; the
		// rewrite would yield ",, Smith" if not rejected
		authorRecord("r1", "Smith , John"),
	}
	journal := &fakeJournal{}
	h := NewAuthorValidatorHandler(platform, journal, zap.NewNop(), 100)

	err := h.Handle(context.Background(), sheet.NewSheetValidateEvent("dlv-7", "ws-1", "env-1", "sheet-1"))

	require.NoError(t, err)
	assert.Empty(t, platform.updated["sheet-1"], "a malformed rewrite must never be written back")
	entry := journal.last()
	assert.Equal(t, OutcomeCompletedWithErrors, entry.Outcome)
	require.Len(t, entry.RecordErrors, 1)
	assert.Equal(t, sheet.ErrCodeInvalidFormat, entry.RecordErrors[0].Code)
}

func TestAuthorValidatorHandler_NonStringAuthorIsError(t *testing.T) {
	platform := newFakePlatform()
	rec := sheet.NewRecord("r1")
	rec.Set(sheet.AuthorField, 42)
	platform.records["sheet-1"] = []sheet.Record{rec}
	journal := &fakeJournal{}
	h := NewAuthorValidatorHandler(platform, journal, zap.NewNop(), 100)

	err := h.Handle(context.Background(), sheet.NewSheetValidateEvent("dlv-5", "ws-1", "env-1", "sheet-1"))

	require.NoError(t, err)
	entry := journal.last()
	require.Len(t, entry.RecordErrors, 1)
	assert.Equal(t, sheet.ErrCodeInvalidType, entry.RecordErrors[0].Code)
}

func TestAuthorValidatorHandler_MissingAuthorFieldSkipped(t *testing.T) {
	platform := newFakePlatform()
	rec := sheet.NewRecord("r1")
	rec.Set("title", "no author here")
	platform.records["sheet-1"] = []sheet.Record{rec}
	journal := &fakeJournal{}
	h := NewAuthorValidatorHandler(platform, journal, zap.NewNop(), 100)

	err := h.Handle(context.Background(), sheet.NewSheetValidateEvent("dlv-6", "ws-1", "env-1", "sheet-1"))

	require.NoError(t, err)
	assert.Empty(t, platform.updated["sheet-1"])
	assert.Equal(t, OutcomeCompleted, journal.last().Outcome)
}
