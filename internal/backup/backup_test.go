package backup

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rnwolfe/cram/internal/store"
	"github.com/rnwolfe/cram/internal/subject"
	"github.com/rnwolfe/cram/internal/task"
)

func seededDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	subjects := subject.NewStore(db.Conn())
	if err := subjects.Add("CS101", "Intro to CS", 3, 40); err != nil {
		t.Fatalf("seeding subject: %v", err)
	}
	if err := subjects.SetWeight("CS101", "quiz", 12); err != nil {
		t.Fatalf("seeding weight: %v", err)
	}
	if err := subjects.SetProjectAvg("CS101", "Finals", 45); err != nil {
		t.Fatalf("seeding project weight: %v", err)
	}
	if err := subjects.SetPerformance("CS101", 70); err != nil {
		t.Fatalf("seeding performance: %v", err)
	}

	tasks := task.NewStore(db.Conn())
	if _, err := tasks.Add("CS101", "Lab report", "assignment", "2026-03-15"); err != nil {
		t.Fatalf("seeding task: %v", err)
	}
	done, err := tasks.Add("CS101", "Old quiz", "quiz", "")
	if err != nil {
		t.Fatalf("seeding task: %v", err)
	}
	if _, err := tasks.Done(done.ID); err != nil {
		t.Fatalf("completing task: %v", err)
	}
	return db
}

func TestExportImport_RoundTrip(t *testing.T) {
	src := seededDB(t)

	var buf bytes.Buffer
	if err := Export(src.Conn(), "correct horse", &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.Contains(buf.String(), "BEGIN AGE ENCRYPTED FILE") {
		t.Error("export should be armored")
	}
	if strings.Contains(buf.String(), "Lab report") {
		t.Error("export must not leak plaintext")
	}

	dst, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("opening destination db: %v", err)
	}
	defer dst.Close()

	arch, err := Import(dst.Conn(), "correct horse", bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(arch.Subjects) != 1 || len(arch.Tasks) != 2 {
		t.Fatalf("archive = %d subjects, %d tasks; want 1, 2", len(arch.Subjects), len(arch.Tasks))
	}

	subjects := subject.NewStore(dst.Conn())
	sub, err := subjects.Get("CS101")
	if err != nil {
		t.Fatalf("restored subject missing: %v", err)
	}
	if sub.Name != "Intro to CS" || sub.RelativeScore != 100 {
		t.Errorf("restored subject = %+v", sub)
	}
	if pct, _ := subjects.Performance("CS101"); pct != 70 {
		t.Errorf("restored performance = %v, want 70", pct)
	}
	weights, _ := subjects.SubjectWeights("CS101")
	if weights["quiz"] != 12 {
		t.Errorf("restored weights = %v", weights)
	}

	tasks := task.NewStore(dst.Conn())
	all, _ := tasks.List(task.ListOptions{ShowDone: true})
	if len(all) != 2 {
		t.Fatalf("restored %d tasks, want 2", len(all))
	}
	pending, _ := tasks.List(task.ListOptions{})
	if len(pending) != 1 || pending[0].Title != "Lab report" {
		t.Errorf("done flags not preserved: %+v", pending)
	}
}

func TestImport_ReplacesExisting(t *testing.T) {
	src := seededDB(t)
	var buf bytes.Buffer
	if err := Export(src.Conn(), "pw", &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}

	dst := seededDB(t)
	subjects := subject.NewStore(dst.Conn())
	if err := subjects.Add("MATH202", "Linear Algebra", 4, 80); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if _, err := Import(dst.Conn(), "pw", bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("Import: %v", err)
	}
	// No merge: the extra subject is gone.
	if _, err := subjects.Get("MATH202"); err == nil {
		t.Error("import should replace, not merge")
	}
	if _, err := subjects.Get("CS101"); err != nil {
		t.Errorf("archived subject missing after import: %v", err)
	}
}

func TestImport_WrongPassphrase(t *testing.T) {
	src := seededDB(t)
	var buf bytes.Buffer
	if err := Export(src.Conn(), "right", &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}

	dst, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("opening destination db: %v", err)
	}
	defer dst.Close()

	_, err = Import(dst.Conn(), "wrong", bytes.NewReader(buf.Bytes()))
	if !errors.Is(err, ErrWrongPassphrase) {
		t.Fatalf("err = %v, want ErrWrongPassphrase", err)
	}

	// Nothing was touched on the failed import.
	subjects := subject.NewStore(dst.Conn())
	if n, _ := subjects.Count(); n != 0 {
		t.Errorf("failed import modified the database: %d subjects", n)
	}
}

func TestImport_Garbage(t *testing.T) {
	dst, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("opening destination db: %v", err)
	}
	defer dst.Close()

	_, err = Import(dst.Conn(), "pw", strings.NewReader("not an archive at all"))
	if !errors.Is(err, ErrCorruptedArchive) {
		t.Fatalf("err = %v, want ErrCorruptedArchive", err)
	}
}

func TestExportFile_RoundTrip(t *testing.T) {
	src := seededDB(t)
	path := filepath.Join(t.TempDir(), "study.age")

	if err := ExportFile(src.Conn(), "pw", path); err != nil {
		t.Fatalf("ExportFile: %v", err)
	}

	dst, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("opening destination db: %v", err)
	}
	defer dst.Close()

	arch, err := ImportFile(dst.Conn(), "pw", path)
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if len(arch.Subjects) != 1 {
		t.Errorf("archive subjects = %d, want 1", len(arch.Subjects))
	}
}
