package sensors

import (
	"sort"

	"github.com/easygrow/plantcore/internal/types"
)

// TypeInfo describes one supported sensor model. DefaultUnit is used when a
// sensor is created without an explicit unit; DHT22 probes report either
// temperature or ambient humidity, so the unit can be overridden at
// creation.
type TypeInfo struct {
	Name        string `json:"tipo_sensor"`
	DisplayName string `json:"nombre"`
	DefaultUnit string `json:"unidad_medida"`
}

var sensorTypes = map[string]TypeInfo{
	"YL-69":   {Name: "YL-69", DisplayName: "Sensor de Humedad del Sustrato", DefaultUnit: "%"},
	"DHT22":   {Name: "DHT22", DisplayName: "Sensor de Temperatura y Humedad Ambiental", DefaultUnit: "°C"},
	"BH1750":  {Name: "BH1750", DisplayName: "Sensor de Luz (Lux)", DefaultUnit: "lux"},
	"HC-SR04": {Name: "HC-SR04", DisplayName: "Sensor de Nivel de Agua (Ultrasonido)", DefaultUnit: "cm"},
	"YL-83":   {Name: "YL-83", DisplayName: "Sensor de Lluvia", DefaultUnit: "boolean"},
	"SW-420":  {Name: "SW-420", DisplayName: "Sensor de Vibraciones", DefaultUnit: "boolean"},
}

// LookupType resolves a sensor type name against the registry.
func LookupType(name string) (TypeInfo, error) {
	info, ok := sensorTypes[name]
	if !ok {
		return TypeInfo{}, types.InvalidInput("unknown sensor type: " + name)
	}
	return info, nil
}

// KnownTypes lists the registry entries in stable name order.
func KnownTypes() []TypeInfo {
	names := make([]string, 0, len(sensorTypes))
	for name := range sensorTypes {
		names = append(names, name)
	}
	sort.Strings(names)

	infos := make([]TypeInfo, 0, len(names))
	for _, name := range names {
		infos = append(infos, sensorTypes[name])
	}
	return infos
}
