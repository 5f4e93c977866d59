package jni

import "github.com/wippyai/tika-bridge/vm"

// Options configures JVM creation.
type Options struct {
	// ClassPath is passed as -Djava.class.path. It must include the Tika
	// bundle and the ai.yobix entry point classes.
	ClassPath string
	// JVMOptions are passed verbatim, e.g. "-Xmx1g".
	JVMOptions []string
}

func (o Options) args() []string {
	out := make([]string, 0, len(o.JVMOptions)+1)
	if o.ClassPath != "" {
		out = append(out, "-Djava.class.path="+o.ClassPath)
	}
	return append(out, o.JVMOptions...)
}

// Opener adapts Open to runtime.Init.
func Opener(opts Options) func() (vm.VM, error) {
	return func() (vm.VM, error) {
		v, err := Open(opts)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}
