package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"stubforge/internal/symbols"
)

// ModuleRow is one persisted module's header row.
type ModuleRow struct {
	ID            int64
	Target        string
	FullName      string
	ValidVersions []string
}

// DeclarationRow is one persisted declaration variant.
type DeclarationRow struct {
	ID            int64
	ModuleID      int64
	Ordinal       int
	Variant       int
	Name          string
	Kind          string
	ValidVersions []string
	Detail        string
}

// SaveModule persists a single-version module symbol under target, replacing
// any previously saved module with the same (target, fullname).
func (s *Store) SaveModule(target string, m *symbols.ModuleSymbol) error {
	return s.save(target, m.FullName, nil, func(tx *sql.Tx, moduleID int64) error {
		for ordinal, decl := range m.Declarations {
			if err := insertDeclaration(tx, moduleID, ordinal, 0, decl, nil); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveMergedModule persists a cross-version merged module symbol under
// target, replacing any previously saved module with the same
// (target, fullname).
func (s *Store) SaveMergedModule(target string, m *symbols.MergedModuleSymbol) error {
	return s.save(target, m.FullName, m.ValidFor, func(tx *sql.Tx, moduleID int64) error {
		for ordinal, decl := range m.Declarations {
			for variant, dv := range decl.Variants {
				if err := insertDeclaration(tx, moduleID, ordinal, variant, dv.Declaration, dv.ValidFor); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (s *Store) save(target, fullname string, validFor []string, insert func(tx *sql.Tx, moduleID int64) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save %s: %w", fullname, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"DELETE FROM modules WHERE target = ? AND fullname = ?", target, fullname,
	); err != nil {
		return fmt.Errorf("delete previous %s: %w", fullname, err)
	}
	res, err := tx.Exec(
		"INSERT INTO modules (target, fullname, valid_versions) VALUES (?, ?, ?)",
		target, fullname, strings.Join(validFor, ","),
	)
	if err != nil {
		return fmt.Errorf("insert module %s: %w", fullname, err)
	}
	moduleID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("module id for %s: %w", fullname, err)
	}
	if err := insert(tx, moduleID); err != nil {
		return fmt.Errorf("insert declarations for %s: %w", fullname, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save %s: %w", fullname, err)
	}
	return nil
}

func insertDeclaration(tx *sql.Tx, moduleID int64, ordinal, variant int, decl *symbols.Declaration, validFor []string) error {
	detail, err := json.Marshal(decl)
	if err != nil {
		return fmt.Errorf("marshal declaration %s: %w", decl.Name, err)
	}
	_, err = tx.Exec(
		`INSERT INTO declarations (module_id, ordinal, variant, name, kind, valid_versions, detail)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		moduleID, ordinal, variant, decl.Name, string(decl.Kind), strings.Join(validFor, ","), string(detail),
	)
	return err
}

// ModuleByName returns the persisted module row for (target, fullname), or
// nil if it was never saved.
func (s *Store) ModuleByName(target, fullname string) (*ModuleRow, error) {
	row := s.db.QueryRow(
		"SELECT id, target, fullname, valid_versions FROM modules WHERE target = ? AND fullname = ?",
		target, fullname,
	)
	m, err := scanModule(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("module %s/%s: %w", target, fullname, err)
	}
	return m, nil
}

// ModulesByTarget returns every persisted module for a target, ordered by
// fullname.
func (s *Store) ModulesByTarget(target string) ([]*ModuleRow, error) {
	rows, err := s.db.Query(
		"SELECT id, target, fullname, valid_versions FROM modules WHERE target = ? ORDER BY fullname",
		target,
	)
	if err != nil {
		return nil, fmt.Errorf("modules for %s: %w", target, err)
	}
	defer rows.Close()
	var out []*ModuleRow
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeclarationsByModule returns a module's declaration variants in
// (ordinal, variant) order.
func (s *Store) DeclarationsByModule(moduleID int64) ([]*DeclarationRow, error) {
	rows, err := s.db.Query(
		`SELECT id, module_id, ordinal, variant, name, kind, valid_versions, detail
		 FROM declarations WHERE module_id = ? ORDER BY ordinal, variant`,
		moduleID,
	)
	if err != nil {
		return nil, fmt.Errorf("declarations for module %d: %w", moduleID, err)
	}
	defer rows.Close()
	var out []*DeclarationRow
	for rows.Next() {
		d := &DeclarationRow{}
		var versions string
		if err := rows.Scan(&d.ID, &d.ModuleID, &d.Ordinal, &d.Variant, &d.Name, &d.Kind, &versions, &d.Detail); err != nil {
			return nil, err
		}
		d.ValidVersions = splitVersions(versions)
		out = append(out, d)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanModule(row rowScanner) (*ModuleRow, error) {
	m := &ModuleRow{}
	var versions string
	if err := row.Scan(&m.ID, &m.Target, &m.FullName, &versions); err != nil {
		return nil, err
	}
	m.ValidVersions = splitVersions(versions)
	return m, nil
}

func splitVersions(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// WriteDebugArtifact writes an indented JSON rendering of a module symbol or
// merged module symbol to <outputRoot>/<target>/<fullname>.json for human
// inspection alongside the primary persisted form.
func WriteDebugArtifact(outputRoot, target, fullname string, module any) error {
	dir := filepath.Join(outputRoot, target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create debug dir: %w", err)
	}
	data, err := json.MarshalIndent(module, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal debug artifact %s: %w", fullname, err)
	}
	path := filepath.Join(dir, fullname+".json")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write debug artifact %s: %w", fullname, err)
	}
	return nil
}
