// Package config loads the configuration of every package in this module
// from the environment and an optional YAML file.
//
// Environment variables are named after the section and field tags under
// the CALLTRACE prefix:
//
//	CALLTRACE_SERVICE_NAME=checkout
//	CALLTRACE_KAFKA_BROKERS=kafka-0:9092,kafka-1:9092
//	CALLTRACE_HTTP_CLIENT_RETRY_MAX=5
//
// The YAML file uses the yaml tags:
//
//	service_name: checkout
//	kafka:
//	  topic: orders
//	  async: true
//	http_client:
//	  timeout: 10s
package config
