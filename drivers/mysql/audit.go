package mysql

import (
	"fmt"
	"strings"
)

const auditTable = "surreal_sync_changes"

func createAuditTableSQL() string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  seq BIGINT NOT NULL AUTO_INCREMENT,
  table_name VARCHAR(255) NOT NULL,
  operation CHAR(1) NOT NULL,
  row_identity JSON NOT NULL,
  row_data JSON NULL,
  changed_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
  PRIMARY KEY (seq)
) ENGINE=InnoDB`, auditTable)
}

// triggerSQL builds the three AFTER INSERT/UPDATE/DELETE triggers for
// table. row_identity is always the ordered primary-key array (per the
// Id model in §3); row_data is a JSON_OBJECT of every column for I/U,
// null for D.
func triggerSQL(table string, pkCols, allCols []string) []string {
	identityJSON := jsonArrayExpr(pkCols, "NEW")
	identityJSONOld := jsonArrayExpr(pkCols, "OLD")
	rowDataNew := jsonObjectExpr(allCols, "NEW")

	insertTrigger := fmt.Sprintf(
		`CREATE TRIGGER %s AFTER INSERT ON %s FOR EACH ROW
  INSERT INTO %s (table_name, operation, row_identity, row_data)
  VALUES (%q, 'I', %s, %s)`,
		triggerName(table, "ins"), table, auditTable, table, identityJSON, rowDataNew)

	updateTrigger := fmt.Sprintf(
		`CREATE TRIGGER %s AFTER UPDATE ON %s FOR EACH ROW
  INSERT INTO %s (table_name, operation, row_identity, row_data)
  VALUES (%q, 'U', %s, %s)`,
		triggerName(table, "upd"), table, auditTable, table, identityJSON, rowDataNew)

	deleteTrigger := fmt.Sprintf(
		`CREATE TRIGGER %s AFTER DELETE ON %s FOR EACH ROW
  INSERT INTO %s (table_name, operation, row_identity, row_data)
  VALUES (%q, 'D', %s, NULL)`,
		triggerName(table, "del"), table, auditTable, table, identityJSONOld)

	return []string{insertTrigger, updateTrigger, deleteTrigger}
}

func dropTriggerSQL(table string) []string {
	return []string{
		"DROP TRIGGER IF EXISTS " + triggerName(table, "ins"),
		"DROP TRIGGER IF EXISTS " + triggerName(table, "upd"),
		"DROP TRIGGER IF EXISTS " + triggerName(table, "del"),
	}
}

func triggerName(table, suffix string) string {
	return fmt.Sprintf("surreal_sync_%s_%s", table, suffix)
}

// jsonArrayExpr renders a primary key as the JSON_ARRAY(...) SQL
// expression that becomes row_identity: an ordered array, consistent
// with the composite-id model in §3.
func jsonArrayExpr(cols []string, alias string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprintf("%s.%s", alias, c)
	}
	return "JSON_ARRAY(" + strings.Join(parts, ", ") + ")"
}

// jsonObjectExpr renders every column as JSON_OBJECT("col", NEW.col, ...).
func jsonObjectExpr(cols []string, alias string) string {
	parts := make([]string, 0, len(cols)*2)
	for _, c := range cols {
		parts = append(parts, fmt.Sprintf("%q", c), alias+"."+c)
	}
	return "JSON_OBJECT(" + strings.Join(parts, ", ") + ")"
}
