package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "HR Attendance & Leave Reconciliation API",
        "description": "Attendance ledger, leave state machine and daily reconciliation engine",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Attendance", "description": "Daily attendance ledger"},
        {"name": "Leave", "description": "Leave applications and balances"},
        {"name": "Admin", "description": "Reconciliation and metrics"}
    ],
    "paths": {
        "/attendance/check-in": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Record today's check-in",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already checked in", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/check-out": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Record today's check-out",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "No open check-in", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/today": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Today's record for the caller",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Monthly records with summary",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "employeeId", "in": "query", "type": "string"},
                    {"name": "month", "in": "query", "type": "integer"},
                    {"name": "year", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/manual": {
            "put": {
                "tags": ["Attendance"],
                "summary": "Manually correct a record (HR/admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ManualCorrectionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/report/export": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Export a month as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "employeeId", "in": "query", "type": "string", "required": true},
                    {"name": "month", "in": "query", "type": "integer"},
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File payload"}
                }
            }
        },
        "/leaves": {
            "post": {
                "tags": ["Leave"],
                "summary": "Apply for leave",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ApplyLeaveRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Overlapping application", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Insufficient balance", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Leave"],
                "summary": "List leave applications",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "employeeId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "leaveType", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/leaves/{id}/cancel": {
            "post": {
                "tags": ["Leave"],
                "summary": "Cancel an own application",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Not cancellable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/leaves/{id}/review": {
            "post": {
                "tags": ["Leave"],
                "summary": "Approve or reject a pending application",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReviewLeaveRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Out of review scope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Insufficient balance", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/leaves/pending": {
            "get": {
                "tags": ["Leave"],
                "summary": "Pending applications reviewable by the caller",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/leaves/balance": {
            "get": {
                "tags": ["Leave"],
                "summary": "Yearly balances per category",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "employeeId", "in": "query", "type": "string"},
                    {"name": "year", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/leaves/balance/total": {
            "put": {
                "tags": ["Leave"],
                "summary": "Adjust a yearly allotment (HR/admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetBalanceTotalRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/reconciliation/run": {
            "post": {
                "tags": ["Admin"],
                "summary": "Trigger a reconciliation run",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "date", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Run already in progress", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/metrics/summary": {
            "get": {
                "tags": ["Admin"],
                "summary": "Aggregate engine metrics",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "AttendanceRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "employee_id": {"type": "string"},
                "date": {"type": "string"},
                "check_in": {"type": "string"},
                "check_out": {"type": "string"},
                "status": {"type": "string", "enum": ["present", "late", "half_day", "absent", "on_leave", "holiday"]},
                "work_hours": {"type": "number"},
                "note": {"type": "string"},
                "is_manual": {"type": "boolean"},
                "marked_by": {"type": "string"}
            }
        },
        "LeaveApplication": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "employee_id": {"type": "string"},
                "leave_type": {"type": "string", "enum": ["casual", "sick", "annual", "unpaid"]},
                "from_date": {"type": "string"},
                "to_date": {"type": "string"},
                "total_days": {"type": "number"},
                "reason": {"type": "string"},
                "status": {"type": "string", "enum": ["pending", "approved", "rejected", "cancelled"]},
                "is_half_day": {"type": "boolean"},
                "attendance_marked": {"type": "boolean"},
                "reviewed_by": {"type": "string"},
                "rejection_reason": {"type": "string"}
            }
        },
        "LeaveBalance": {
            "type": "object",
            "properties": {
                "employee_id": {"type": "string"},
                "year": {"type": "integer"},
                "leave_type": {"type": "string"},
                "total": {"type": "number"},
                "used": {"type": "number"},
                "remaining": {"type": "number"}
            }
        },
        "ApplyLeaveRequest": {
            "type": "object",
            "properties": {
                "leave_type": {"type": "string"},
                "from_date": {"type": "string"},
                "to_date": {"type": "string"},
                "reason": {"type": "string"},
                "is_half_day": {"type": "boolean"}
            },
            "required": ["leave_type", "from_date", "to_date", "reason"]
        },
        "ReviewLeaveRequest": {
            "type": "object",
            "properties": {
                "action": {"type": "string", "enum": ["approve", "reject"]},
                "rejection_reason": {"type": "string"}
            },
            "required": ["action"]
        },
        "ManualCorrectionRequest": {
            "type": "object",
            "properties": {
                "employee_id": {"type": "string"},
                "date": {"type": "string"},
                "status": {"type": "string"},
                "check_in": {"type": "string"},
                "check_out": {"type": "string"},
                "note": {"type": "string"}
            },
            "required": ["employee_id", "date", "status"]
        },
        "SetBalanceTotalRequest": {
            "type": "object",
            "properties": {
                "employee_id": {"type": "string"},
                "year": {"type": "integer"},
                "leave_type": {"type": "string"},
                "total": {"type": "number"}
            },
            "required": ["employee_id", "year", "leave_type", "total"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
