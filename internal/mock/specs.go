package mock

// Connector configuration schemas served by the mock Spec endpoint. The
// fragments mirror the shape the backend produces: JSON-Schema properties
// with titles, defaults and a required list.
var connectorSpecs = map[string]string{
	"postgres": `{
  "title": "PostgreSQL",
  "type": "object",
  "required": ["host", "port", "database", "username", "password"],
  "properties": {
    "host": {"type": "string", "title": "Host", "order": 1},
    "port": {"type": "integer", "title": "Port", "default": 5432, "order": 2},
    "database": {"type": "string", "title": "Database", "order": 3},
    "username": {"type": "string", "title": "Username", "order": 4},
    "password": {"type": "string", "title": "Password", "format": "password", "order": 5},
    "ssl": {
      "type": "object",
      "title": "SSL Configuration",
      "order": 6,
      "properties": {
        "mode": {"type": "string", "title": "SSL Mode", "enum": ["disable", "require", "verify-ca", "verify-full"], "default": "disable"}
      }
    },
    "update_method": {
      "type": "object",
      "title": "Update Method",
      "order": 7,
      "properties": {
        "replication_slot": {"type": "string", "title": "Replication Slot"},
        "intial_wait_time": {"type": "integer", "title": "Initial Wait Time", "default": 10}
      }
    }
  }
}`,
	"mysql": `{
  "title": "MySQL",
  "type": "object",
  "required": ["hosts", "database", "username", "password"],
  "properties": {
    "hosts": {"type": "string", "title": "Host", "order": 1},
    "port": {"type": "integer", "title": "Port", "default": 3306, "order": 2},
    "database": {"type": "string", "title": "Database", "order": 3},
    "username": {"type": "string", "title": "Username", "order": 4},
    "password": {"type": "string", "title": "Password", "format": "password", "order": 5},
    "tls_skip_verify": {"type": "boolean", "title": "Skip TLS Verification", "default": true, "order": 6}
  }
}`,
	"mongodb": `{
  "title": "MongoDB",
  "type": "object",
  "required": ["hosts", "database", "username", "password"],
  "properties": {
    "hosts": {"type": "array", "title": "Hosts", "order": 1},
    "database": {"type": "string", "title": "Database", "order": 2},
    "username": {"type": "string", "title": "Username", "order": 3},
    "password": {"type": "string", "title": "Password", "format": "password", "order": 4},
    "srv": {"type": "boolean", "title": "Use SRV", "default": false, "order": 5},
    "max_threads": {"type": "integer", "title": "Max Threads", "default": 50, "order": 6},
    "default_mode": {"type": "string", "title": "Default Sync Mode", "enum": ["cdc", "full_refresh"], "default": "cdc", "order": 7}
  }
}`,
	"s3": `{
  "title": "Amazon S3",
  "type": "object",
  "required": ["s3_bucket", "s3_region"],
  "properties": {
    "s3_bucket": {"type": "string", "title": "Bucket", "order": 1},
    "s3_region": {"type": "string", "title": "Region", "order": 2},
    "s3_access_key": {"type": "string", "title": "Access Key", "order": 3},
    "s3_secret_key": {"type": "string", "title": "Secret Key", "format": "password", "order": 4},
    "s3_path": {"type": "string", "title": "Path Prefix", "order": 5}
  }
}`,
	"iceberg": `{
  "title": "Apache Iceberg",
  "type": "object",
  "required": ["catalog_type", "iceberg_s3_path"],
  "properties": {
    "catalog_type": {"type": "string", "title": "Catalog", "enum": ["glue", "rest", "jdbc", "hive"], "default": "glue", "order": 1},
    "iceberg_s3_path": {"type": "string", "title": "Warehouse Path", "order": 2},
    "aws_region": {"type": "string", "title": "AWS Region", "order": 3},
    "iceberg_db": {"type": "string", "title": "Database", "order": 4}
  }
}`,
}

var genericSpec = `{
  "title": "Connector",
  "type": "object",
  "properties": {}
}`
