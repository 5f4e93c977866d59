package projector

import (
	"testing"

	"github.com/wippyai/tika-bridge/vm"
)

type sample struct {
	On   bool
	Size int32
	Name string
}

func TestValidate_KindMismatch(t *testing.T) {
	tests := []struct {
		name string
		p    param[sample]
	}{
		{"bool setter fed an int", param[sample]{
			set:   vm.NewMethod("setOn", "(I)V"),
			get:   vm.NewMethod("isOn", "()Z"),
			value: func(s *sample) any { return s.On },
		}},
		{"string setter fed a bool", param[sample]{
			set:   vm.NewMethod("setName", "(Ljava/lang/String;)V"),
			get:   vm.NewMethod("getName", "()Ljava/lang/String;"),
			value: func(s *sample) any { return s.On },
		}},
		{"two arguments", param[sample]{
			set:   vm.NewMethod("setSize", "(II)V"),
			get:   vm.NewMethod("getSize", "()I"),
			value: func(s *sample) any { return s.Size },
		}},
		{"setter returns a value", param[sample]{
			set:   vm.NewMethod("setSize", "(I)I"),
			get:   vm.NewMethod("getSize", "()I"),
			value: func(s *sample) any { return s.Size },
		}},
		{"getter kind differs", param[sample]{
			set:   vm.NewMethod("setSize", "(I)V"),
			get:   vm.NewMethod("getSize", "()J"),
			value: func(s *sample) any { return s.Size },
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := &Table[sample]{Class: "test/Sample", params: []param[sample]{tt.p}}
			if err := tbl.validate(); err == nil {
				t.Error("validate should fail")
			}
		})
	}
}

func TestValidate_Tables(t *testing.T) {
	for _, err := range []error{PDF.validate(), Office.validate(), OCR.validate()} {
		if err != nil {
			t.Error(err)
		}
	}
}
