package validation

import (
	"testing"
	"time"
)

type testUser struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

type testSubTask struct {
	ID       string `json:"_id" validate:"omitempty,uuid"`
	Subject  string `json:"subject" validate:"required"`
	Status   string `json:"status" validate:"omitempty,taskstatus"`
	Deadline string `json:"deadline" validate:"required,date"`
	IsActive *bool  `json:"isActive" validate:"required"`
}

type testNamed struct {
	Name    string  `json:"name" validate:"required,notblank,plaintext"`
	Subject *string `json:"subject" validate:"omitempty,plaintext"`
}

type testSubTasks struct {
	SubTasks []testSubTask `json:"subTasks" validate:"required,dive"`
}

func TestStruct_Valid_ReturnsNil(t *testing.T) {
	if fields := Struct(&testUser{Name: "n", Email: "n@example.com"}); fields != nil {
		t.Errorf("expected nil, got %v", fields)
	}
}

func TestStruct_ReportsEveryInvalidField(t *testing.T) {
	fields := Struct(&testUser{Name: "", Email: "not-an-email"})

	if len(fields) != 2 {
		t.Fatalf("len(fields) = %d, want 2: %v", len(fields), fields)
	}
	if fields["name"] != `"name" is required` {
		t.Errorf("name = %q", fields["name"])
	}
	if fields["email"] != `"email" must be a valid email` {
		t.Errorf("email = %q", fields["email"])
	}
}

func TestStruct_NestedFieldPaths(t *testing.T) {
	active := true
	req := &testSubTasks{SubTasks: []testSubTask{
		{Subject: "ok", Deadline: "2024-01-01", IsActive: &active},
		{Subject: "", Status: "Done", Deadline: "tomorrow"},
	}}

	fields := Struct(req)

	want := map[string]string{
		"subTasks[1].subject":  `"subject" is required`,
		"subTasks[1].status":   `"status" must be one of [Pending, Completed]`,
		"subTasks[1].deadline": `"deadline" must be a valid date`,
		"subTasks[1].isActive": `"isActive" is required`,
	}
	for k, v := range want {
		if fields[k] != v {
			t.Errorf("fields[%q] = %q, want %q", k, fields[k], v)
		}
	}
	if len(fields) != len(want) {
		t.Errorf("unexpected fields: %v", fields)
	}
}

func TestStruct_NilSliceIsRequired_EmptySliceIsAllowed(t *testing.T) {
	if fields := Struct(&testSubTasks{}); fields["subTasks"] != `"subTasks" is required` {
		t.Errorf("nil slice: fields = %v", fields)
	}
	if fields := Struct(&testSubTasks{SubTasks: []testSubTask{}}); fields != nil {
		t.Errorf("empty slice: expected nil, got %v", fields)
	}
}

func TestStruct_PlainTextFields(t *testing.T) {
	tests := []struct {
		name      string
		req       testNamed
		wantField string
		wantMsg   string
	}{
		{name: "比較演算子を含むテキストは受け付ける", req: testNamed{Name: "a < b & c > d"}},
		{name: "空白のみは拒否", req: testNamed{Name: "   "}, wantField: "name", wantMsg: `"name" must not be blank`},
		{name: "タグとして解釈される並びは拒否", req: testNamed{Name: "Fix a<b && c>d"}, wantField: "name", wantMsg: `"name" must not contain markup`},
		{name: "マークアップのみは拒否", req: testNamed{Name: "<script>x</script>"}, wantField: "name", wantMsg: `"name" must not contain markup`},
		{name: "任意フィールドの空文字列は受け付ける", req: testNamed{Name: "ok", Subject: strPtr("")}},
		{name: "任意フィールドのマークアップは拒否", req: testNamed{Name: "ok", Subject: strPtr("<img src=x>")}, wantField: "subject", wantMsg: `"subject" must not contain markup`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := Struct(&tt.req)
			if tt.wantField == "" {
				if fields != nil {
					t.Errorf("expected nil, got %v", fields)
				}
				return
			}
			if fields[tt.wantField] != tt.wantMsg {
				t.Errorf("fields = %v, want %s: %s", fields, tt.wantField, tt.wantMsg)
			}
		})
	}
}

func strPtr(s string) *string { return &s }

func TestPathID(t *testing.T) {
	if fields := PathID("userId", "6f1c2a9e-3c1b-4d59-9a44-5f1f1b7f2a10"); fields != nil {
		t.Errorf("valid uuid: got %v", fields)
	}
	fields := PathID("userId", "abc")
	if fields["userId"] != `"userId" must be a valid id` {
		t.Errorf("invalid uuid: got %v", fields)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), false},
		{"2024-03-15T10:30:00Z", time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC), false},
		{"2024-03-15T10:30:00+09:00", time.Date(2024, 3, 15, 1, 30, 0, 0, time.UTC), false},
		{"2024-03-15T10:30:00", time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC), false},
		{"15/03/2024", time.Time{}, true},
		{"", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
