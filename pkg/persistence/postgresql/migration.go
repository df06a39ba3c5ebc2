package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE automation_rules (
				id UUID PRIMARY KEY,
				organization_id VARCHAR(255) NOT NULL,
				project_id VARCHAR(255) NOT NULL DEFAULT '',
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				trigger_type VARCHAR(50) NOT NULL,
				trigger_conditions JSONB NOT NULL DEFAULT '{}',
				actions JSONB NOT NULL DEFAULT '[]',
				priority INT NOT NULL DEFAULT 1,
				is_active BOOLEAN NOT NULL DEFAULT true,
				execution_count BIGINT NOT NULL DEFAULT 0,
				last_executed TIMESTAMP WITH TIME ZONE,
				created_by VARCHAR(255) NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_automation_rules_dispatch
				ON automation_rules(organization_id, trigger_type)
				WHERE is_active;
			CREATE INDEX idx_automation_rules_created_at ON automation_rules(created_at);

			CREATE TABLE rule_executions (
				id VARCHAR(64) PRIMARY KEY,
				rule_id UUID NOT NULL REFERENCES automation_rules(id) ON DELETE CASCADE,
				trigger_data JSONB NOT NULL DEFAULT '{}',
				execution_status VARCHAR(20) NOT NULL,
				actions_performed JSONB NOT NULL DEFAULT '[]',
				execution_results JSONB NOT NULL DEFAULT '{}',
				error_details TEXT NOT NULL DEFAULT '',
				execution_time_ms BIGINT NOT NULL DEFAULT 0,
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				completed_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_rule_executions_rule_id ON rule_executions(rule_id);
			CREATE INDEX idx_rule_executions_started_at ON rule_executions(started_at);

			CREATE TABLE custom_fields (
				id UUID PRIMARY KEY,
				organization_id VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				field_type VARCHAR(50) NOT NULL,
				entity_type VARCHAR(50) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				options JSONB NOT NULL DEFAULT '[]',
				validation_rules JSONB NOT NULL DEFAULT '{}',
				required BOOLEAN NOT NULL DEFAULT false,
				searchable BOOLEAN NOT NULL DEFAULT true,
				display_order INT NOT NULL DEFAULT 0,
				is_active BOOLEAN NOT NULL DEFAULT true,
				created_by VARCHAR(255) NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_custom_fields_lookup
				ON custom_fields(organization_id, name)
				WHERE is_active;

			CREATE TABLE custom_field_values (
				id UUID PRIMARY KEY,
				field_id UUID NOT NULL REFERENCES custom_fields(id) ON DELETE CASCADE,
				entity_id VARCHAR(255) NOT NULL,
				value_text TEXT,
				value_number DOUBLE PRECISION,
				value_date TIMESTAMP WITH TIME ZONE,
				value_boolean BOOLEAN,
				value_json JSONB,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				UNIQUE (field_id, entity_id)
			);

			CREATE INDEX idx_custom_field_values_entity ON custom_field_values(entity_id);

			CREATE TABLE automation_templates (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				category VARCHAR(100) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				template_data JSONB NOT NULL DEFAULT '{}',
				use_cases JSONB NOT NULL DEFAULT '[]',
				is_public BOOLEAN NOT NULL DEFAULT false,
				is_featured BOOLEAN NOT NULL DEFAULT false,
				usage_count BIGINT NOT NULL DEFAULT 0,
				rating DOUBLE PRECISION NOT NULL DEFAULT 0,
				created_by VARCHAR(255) NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_automation_templates_category ON automation_templates(category);
			CREATE INDEX idx_automation_templates_public ON automation_templates(is_public);
		`,
	}
}
