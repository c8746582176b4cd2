/*
Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each extension keeps a single configuration object under the "_c:<package>"
key. It is loaded from the genesis file, read by handlers with Load and can be
updated at runtime by its owner through UpdateConfigurationHandler.
*/
package gconf
