// Package driving defines the driving ports (primary/input interfaces)
// for keywatch: the operations the CLI invokes on the core.
package driving
