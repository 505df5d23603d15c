package repository

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"report-service/internal/model"
)

// Record is an untyped row as returned by the backend.
type Record = map[string]interface{}

type fieldAlias struct {
	field   string
	sources []string
}

// reportFieldAliases is the single mapping from accepted source keys to the
// canonical report fields. Sources are tried in order and the first non-empty
// value wins.
var reportFieldAliases = []fieldAlias{
	{"id", []string{"id", "uuid"}},
	{"ticket_number", []string{"ticket_number", "ticketNumber", "ticket_no", "tiket_id", "ticket_id"}},
	{"violence_type", []string{"violence_type", "violenceType", "jenis_kekerasan", "violence", "category", "kategori", "type", "violation_type"}},
	{"incident_date", []string{"incident_date", "incidentDate", "tanggal_kejadian"}},
	{"incident_time", []string{"incident_time", "incidentTime", "waktu_kejadian"}},
	{"location", []string{"location", "lokasi"}},
	{"description", []string{"description", "deskripsi", "kronologi"}},
	{"impact", []string{"impact", "dampak"}},
	{"victim_name", []string{"victim_name", "victimName", "nama_korban", "name"}},
	{"victim_age", []string{"victim_age", "victimAge", "usia_korban"}},
	{"victim_gender", []string{"victim_gender", "victimGender", "jenis_kelamin_korban"}},
	{"victim_phone", []string{"victim_phone", "victimPhone"}},
	{"victim_email", []string{"victim_email", "victimEmail"}},
	{"perpetrator_name", []string{"perpetrator_name", "perpetratorName", "nama_pelaku"}},
	{"perpetrator_relationship", []string{"perpetrator_relationship", "perpetratorRelationship", "hubungan_pelaku"}},
	{"witness_name", []string{"witness_name", "witnessName", "nama_saksi"}},
	{"witness_contact", []string{"witness_contact", "witnessContact", "kontak_saksi"}},
	{"is_anonymous", []string{"is_anonymous", "isAnonymous", "anonim", "anonymous"}},
	{"reporter_name", []string{"reporter_name", "reporterName", "nama_pelapor"}},
	{"reporter_phone", []string{"reporter_phone", "reporterPhone", "telepon_pelapor"}},
	{"reporter_email", []string{"reporter_email", "reporterEmail", "email_pelapor"}},
	{"reporter_relationship", []string{"reporter_relationship", "reporterRelationship", "hubungan_pelapor"}},
	{"status", []string{"status", "state"}},
	{"priority", []string{"priority", "prioritas"}},
	{"assigned_to", []string{"assigned_to", "assignedTo"}},
	{"notes", []string{"notes", "catatan", "follow_up"}},
	{"created_at", []string{"created_at", "createdAt", "date", "tanggal"}},
	{"updated_at", []string{"updated_at", "updatedAt"}},
}

// canonicalize resolves every canonical field of rec through the alias table.
func canonicalize(rec Record) Record {
	out := make(Record, len(reportFieldAliases))
	for _, alias := range reportFieldAliases {
		for _, source := range alias.sources {
			value, ok := rec[source]
			if !ok || isEmptyValue(value) {
				continue
			}
			out[alias.field] = value
			break
		}
	}
	return out
}

// ReportFromRecord maps an untyped row onto model.Report, normalizing status
// and violence type values to their canonical codes.
func ReportFromRecord(rec Record) model.Report {
	fields := canonicalize(rec)

	var report model.Report
	report.ID = toUUID(fields["id"])
	report.TicketNumber = toString(fields["ticket_number"])
	report.ViolenceType = toViolenceType(fields["violence_type"])
	report.IncidentDate = toDatePtr(fields["incident_date"])
	report.IncidentTime = toClockPtr(fields["incident_time"])
	report.Location = toString(fields["location"])
	report.Description = toString(fields["description"])
	report.Impact = toStringPtr(fields["impact"])
	report.VictimName = toStringPtr(fields["victim_name"])
	report.VictimAge = toIntPtr(fields["victim_age"])
	report.VictimGender = toStringPtr(fields["victim_gender"])
	report.VictimPhone = toStringPtr(fields["victim_phone"])
	report.VictimEmail = toStringPtr(fields["victim_email"])
	report.PerpetratorName = toStringPtr(fields["perpetrator_name"])
	report.PerpetratorRelationship = toStringPtr(fields["perpetrator_relationship"])
	report.WitnessName = toStringPtr(fields["witness_name"])
	report.WitnessContact = toStringPtr(fields["witness_contact"])
	report.IsAnonymous = toBool(fields["is_anonymous"])
	report.ReporterName = toStringPtr(fields["reporter_name"])
	report.ReporterPhone = toStringPtr(fields["reporter_phone"])
	report.ReporterEmail = toStringPtr(fields["reporter_email"])
	report.ReporterRelationship = toStringPtr(fields["reporter_relationship"])
	report.Status = toStatus(fields["status"])
	report.Priority = toPriorityPtr(fields["priority"])
	report.AssignedTo = toStringPtr(fields["assigned_to"])
	report.Notes = toStringPtr(fields["notes"])
	report.CreatedAt = toTime(fields["created_at"])
	report.UpdatedAt = toTime(fields["updated_at"])
	if report.UpdatedAt.IsZero() {
		report.UpdatedAt = report.CreatedAt
	}
	if report.IsAnonymous {
		report.ClearReporterIdentity()
	}
	return report
}

func isEmptyValue(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []byte:
		return strings.TrimSpace(string(v)) == ""
	case *string:
		return v == nil || strings.TrimSpace(*v) == ""
	case time.Time:
		return v.IsZero()
	}
	return false
}

func toString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []byte:
		return strings.TrimSpace(string(v))
	case *string:
		if v == nil {
			return ""
		}
		return strings.TrimSpace(*v)
	case time.Time:
		return v.Format(time.RFC3339)
	case [16]byte:
		return uuid.UUID(v).String()
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(value)
}

func toStringPtr(value interface{}) *string {
	s := toString(value)
	if s == "" {
		return nil
	}
	return &s
}

func toUUID(value interface{}) uuid.UUID {
	switch v := value.(type) {
	case uuid.UUID:
		return v
	case [16]byte:
		return uuid.UUID(v)
	case []byte:
		if len(v) == 16 {
			if id, err := uuid.FromBytes(v); err == nil {
				return id
			}
		}
	}
	id, err := uuid.Parse(toString(value))
	if err != nil {
		return uuid.Nil
	}
	return id
}

func toIntPtr(value interface{}) *int {
	var n int
	switch v := value.(type) {
	case nil:
		return nil
	case int:
		n = v
	case int32:
		n = int(v)
	case int64:
		n = int(v)
	case float64:
		n = int(v)
	case *int:
		return v
	default:
		parsed, err := strconv.Atoi(toString(value))
		if err != nil {
			return nil
		}
		n = parsed
	}
	return &n
}

func toBool(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	case float64:
		return v != 0
	}
	switch strings.ToLower(toString(value)) {
	case "1", "t", "true", "y", "yes", "ya":
		return true
	}
	return false
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func toTime(value interface{}) time.Time {
	switch v := value.(type) {
	case time.Time:
		return v
	case *time.Time:
		if v != nil {
			return *v
		}
		return time.Time{}
	}
	raw := toString(value)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func toDatePtr(value interface{}) *string {
	if ts, ok := value.(time.Time); ok {
		date := ts.Format("2006-01-02")
		return &date
	}
	raw := toString(value)
	if len(raw) < 10 {
		return toStringPtr(raw)
	}
	if _, err := time.Parse("2006-01-02", raw[:10]); err == nil {
		date := raw[:10]
		return &date
	}
	return &raw
}

func toClockPtr(value interface{}) *string {
	if ts, ok := value.(time.Time); ok {
		clock := ts.Format("15:04")
		return &clock
	}
	raw := toString(value)
	if len(raw) == len("15:04:05") {
		if _, err := time.Parse("15:04:05", raw); err == nil {
			raw = raw[:5]
		}
	}
	return toStringPtr(raw)
}

func toStatus(value interface{}) model.ReportStatus {
	raw := toString(value)
	if raw == "" {
		return model.ReportStatusNew
	}
	if status, ok := model.ParseReportStatus(raw); ok {
		return status
	}
	return model.ReportStatus(strings.ToLower(raw))
}

func toViolenceType(value interface{}) model.ViolenceType {
	raw := toString(value)
	if vt, ok := model.ParseViolenceType(raw); ok {
		return vt
	}
	return model.ViolenceType(raw)
}

func toPriorityPtr(value interface{}) *model.Priority {
	priority, ok := model.ParsePriority(toString(value))
	if !ok {
		return nil
	}
	return &priority
}
