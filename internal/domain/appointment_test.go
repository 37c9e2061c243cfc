package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestDate_UnmarshalJSON(t *testing.T) {
	cases := map[string]time.Time{
		`"2030-05-06"`:                time.Date(2030, 5, 6, 0, 0, 0, 0, time.UTC),
		`"2030-05-06T09:30:00Z"`:      time.Date(2030, 5, 6, 9, 30, 0, 0, time.UTC),
		`"2030-05-06T09:30:00+01:00"`: time.Date(2030, 5, 6, 8, 30, 0, 0, time.UTC),
	}
	for in, want := range cases {
		var d Date
		if err := json.Unmarshal([]byte(in), &d); err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if !d.Equal(want) {
			t.Errorf("%s: got %v, want %v", in, d.Time, want)
		}
	}

	var d Date
	err := json.Unmarshal([]byte(`"06/05/2030"`), &d)
	var de *Error
	if !errors.As(err, &de) || de.Code != CodeInvalidDate {
		t.Fatalf("expected INVALID_DATE, got %v", err)
	}
	if err := json.Unmarshal([]byte(`null`), &d); err != nil || !d.IsZero() {
		t.Fatalf("null: %v %v", err, d)
	}
}

func TestCreateAppointmentRequest_Validate(t *testing.T) {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	base := func() CreateAppointmentRequest {
		return CreateAppointmentRequest{
			PatientName: "Jane", PatientEmail: "j@x.com", PatientPhone: "1",
			AppointmentDate: NewDate(now.Add(time.Minute)), AppointmentTime: "9:00 AM",
			Department: "Cardiology", Reason: "Follow-up",
		}
	}

	ok := base()
	if err := ok.Validate(now); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	noNotes := base()
	noNotes.Notes = ""
	if err := noNotes.Validate(now); err != nil {
		t.Fatalf("notes are optional: %v", err)
	}

	missing := base()
	missing.PatientPhone = ""
	if err := missing.Validate(now); KindOf(err) != KindValidation {
		t.Fatalf("missing phone: %v", err)
	}

	present := base()
	present.AppointmentDate = NewDate(now)
	var de *Error
	if err := present.Validate(now); !errors.As(err, &de) || de.Code != CodeInvalidDate {
		t.Fatalf("present date: %v", err)
	}
}

func TestAppointmentPatch_IgnoresUnknownFields(t *testing.T) {
	var p AppointmentPatch
	body := `{"notes":"n","status":"completed","userId":"evil","confirmationCode":"ZZZZZZ"}`
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatal(err)
	}

	a := &Appointment{UserID: "owner", Status: StatusPending, ConfirmationCode: "ABC123"}
	changes := p.Apply(a)
	if len(changes) != 1 || changes[0] != "notes" {
		t.Fatalf("changes %v", changes)
	}
	if a.UserID != "owner" || a.Status != StatusPending || a.ConfirmationCode != "ABC123" {
		t.Fatalf("protected fields changed: %+v", a)
	}
}

func TestAppointmentPatch_Validate(t *testing.T) {
	empty := ""
	if err := (&AppointmentPatch{PatientName: &empty}).Validate(); KindOf(err) != KindValidation {
		t.Fatalf("blank name: %v", err)
	}
	if err := (&AppointmentPatch{Notes: &empty}).Validate(); err != nil {
		t.Fatalf("notes may be cleared: %v", err)
	}
	zero := Date{}
	if err := (&AppointmentPatch{AppointmentDate: &zero}).Validate(); KindOf(err) != KindValidation {
		t.Fatalf("null date: %v", err)
	}
	if err := (&AppointmentPatch{}).Validate(); err != nil {
		t.Fatalf("empty patch: %v", err)
	}
}

func TestAppointmentPatch_ValidateReportsFirstBlankField(t *testing.T) {
	blank := " "
	p := &AppointmentPatch{PatientPhone: &blank, Department: &blank, Reason: &blank, PatientName: &blank}
	for i := 0; i < 20; i++ {
		err := p.Validate()
		var de *Error
		if !errors.As(err, &de) || de.Message != "patientName cannot be empty" {
			t.Fatalf("run %d: got %v, want patientName reported first", i, err)
		}
	}
}

func TestParseAppointmentStatus(t *testing.T) {
	if s, ok := ParseAppointmentStatus("confirmed"); !ok || s != StatusConfirmed {
		t.Fatal("confirmed should parse")
	}
	if _, ok := ParseAppointmentStatus("archived"); ok {
		t.Fatal("unknown status accepted")
	}
}
