package envelope

import (
	"sort"

	"github.com/wippyai/tika-bridge/errors"
	"github.com/wippyai/tika-bridge/vm"
)

var (
	namesMethod     = vm.NewMethod("names", "()[Ljava/lang/String;")
	getValuesMethod = vm.NewMethod("getValues", "(Ljava/lang/String;)[Ljava/lang/String;")
)

// Metadata is document metadata keyed by Tika property name. A property may
// carry several values.
type Metadata map[string][]string

// Get returns the first value for name, or "".
func (m Metadata) Get(name string) string {
	if v := m[name]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// Names returns the property names in sorted order.
func (m Metadata) Names() []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ReadMetadata copies the metadata attached to a result of the given class.
// A result without metadata yields an empty map. Envelope errors are not
// checked here; call String or Reader first.
func ReadMetadata(env vm.Env, class string, result vm.Object) (Metadata, error) {
	md := Metadata{}
	obj, err := vm.CallObject(env, errors.PhaseEnvelope, result, class, getMetadataMethod)
	if err != nil || obj == nil {
		return md, err
	}
	defer env.DeleteLocalRef(obj)

	names, err := vm.CallObject(env, errors.PhaseEnvelope, obj, MetadataClass, namesMethod)
	if err != nil || names == nil {
		return md, err
	}
	defer env.DeleteLocalRef(names)

	n, err := vm.ArrayLength(env, errors.PhaseEnvelope, names)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		if err := readProperty(env, md, obj, names, i); err != nil {
			return nil, err
		}
	}
	return md, nil
}

func readProperty(env vm.Env, md Metadata, obj, names vm.Object, i int) error {
	name, err := vm.ArrayElement(env, errors.PhaseEnvelope, names, i)
	if err != nil || name == nil {
		return err
	}
	defer env.DeleteLocalRef(name)

	key, err := vm.GetString(env, errors.PhaseEnvelope, name)
	if err != nil {
		return err
	}
	values, err := vm.CallObject(env, errors.PhaseEnvelope, obj, MetadataClass, getValuesMethod, vm.Ref(name))
	if err != nil || values == nil {
		return err
	}
	defer env.DeleteLocalRef(values)

	n, err := vm.ArrayLength(env, errors.PhaseEnvelope, values)
	if err != nil {
		return err
	}
	out := make([]string, 0, n)
	for j := 0; j < n; j++ {
		v, err := vm.ArrayElement(env, errors.PhaseEnvelope, values, j)
		if err != nil {
			return err
		}
		if v == nil {
			continue
		}
		s, err := vm.GetString(env, errors.PhaseEnvelope, v)
		env.DeleteLocalRef(v)
		if err != nil {
			return err
		}
		out = append(out, s)
	}
	md[key] = out
	return nil
}
