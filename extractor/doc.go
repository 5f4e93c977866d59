// Package extractor is the host-facing surface of the bridge.
//
// An Extractor owns a set of parser configs and turns each call into one
// foreign frame: the configs are projected, the matching TikaNativeMain entry
// point is invoked, and the result envelope is unwrapped.
//
//	rt, err := runtime.Init(jni.Opener(jni.Options{ClassPath: cp}))
//	if err != nil {
//		return err
//	}
//	ex, err := extractor.New(rt, extractor.WithMaxLength(50_000))
//	if err != nil {
//		return err
//	}
//	text, md, err := ex.ExtractFileToString(ctx, "report.pdf")
//
// Streaming variants return a Result whose Stream must be closed. Closing
// must happen outside any runtime.WithEnv callback.
package extractor
