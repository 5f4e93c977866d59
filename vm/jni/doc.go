// Package jni embeds a HotSpot JVM through the Java Native Interface.
//
// It is compiled only with the jni build tag and cgo enabled. The JDK
// headers and libjvm must be reachable, for example:
//
//	CGO_CFLAGS="-I$JAVA_HOME/include -I$JAVA_HOME/include/linux" \
//	CGO_LDFLAGS="-L$JAVA_HOME/lib/server -Wl,-rpath,$JAVA_HOME/lib/server" \
//	go build -tags jni ./...
//
// Without the tag, Open returns a setup error and Available is false.
//
// A JVM cannot be recreated after DestroyJavaVM, so Open succeeds at most
// once per process. Pair it with runtime.Init:
//
//	rt, err := runtime.Init(jni.Opener(jni.Options{ClassPath: cp}))
package jni
