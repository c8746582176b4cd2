/*
Package utils provides the decorators every custody handler chain is built
from: panic recovery, logging, metrics and savepoints.
*/
package utils
