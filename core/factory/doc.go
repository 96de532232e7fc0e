// Package factory provides a small generic registry used to build modules,
// such as metrics sinks, from configuration. A module is described by a type
// name and a map of raw settings; its factory decodes the settings into a
// typed struct and returns the concrete implementation.
//
//	reg := factory.NewRegistry[coremetrics.MetricsSink]()
//	reg.Register("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
//	    var c struct{ URL string `json:"url"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return newInfluxSink(c.URL), nil
//	})
//	sink, err := reg.Create(factory.ModuleConfig{Type: "influx", Conf: map[string]any{"url": "http://influx:8086"}})
package factory
