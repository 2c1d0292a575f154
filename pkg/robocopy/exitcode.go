// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package robocopy

import "fmt"

// FailureThreshold is the first exit code robocopy uses to signal that at
// least one file failed to copy. Anything below it is informational.
const FailureThreshold = 8

// 🚦 Result is the classification of a robocopy exit code
type Result struct {
	Code    int
	Success bool
	Message string
}

// exitCodes mirrors robocopy's documented bit-flag exit codes.
var exitCodes = [...]string{
	0:  "No files were copied. No failure was encountered. No files were mismatched. The files already exist in the destination directory; therefore, the copy operation was skipped.",
	1:  "All files were copied successfully.",
	2:  "There are some additional files in the destination directory that are not present in the source directory. No files were copied.",
	3:  "Some files were copied. Additional files were present. No failure was encountered.",
	4:  "Some Mismatched files or directories were detected. Examine the output log. Housekeeping might be required.",
	5:  "Some files were copied. Some files were mismatched. No failure was encountered.",
	6:  "Additional files and mismatched files exist. No files were copied and no failures were encountered. This means that the files already exist in the destination directory.",
	7:  "Files were copied, a file mismatch was present, and additional files were present.",
	8:  "Several files did not copy.",
	9:  "Some files were copied, but several files did not copy.",
	10: "Additional files were present, and several files did not copy.",
	11: "Some files were copied, additional files were present, and several files did not copy.",
	12: "Mismatched files were present, and several files did not copy.",
	13: "Some files were copied, mismatched files were present, and several files did not copy.",
	14: "Additional files and mismatched files were present, and several files did not copy.",
	15: "Some files were copied, additional and mismatched files were present, and several files did not copy.",
	16: "Serious error. Robocopy did not copy any files. Either a usage error or an error due to insufficient access privileges on the source or destination directories.",
}

// 🔍 Classify maps a robocopy exit code to a success flag and message
func Classify(code int) Result {
	if code < 0 || code >= len(exitCodes) {
		return Result{
			Code:    code,
			Success: false,
			Message: fmt.Sprintf("Unknown exit code %d.", code),
		}
	}
	return Result{
		Code:    code,
		Success: code < FailureThreshold,
		Message: exitCodes[code],
	}
}

// IsFailure reports whether the code is at or above the failure threshold.
func IsFailure(code int) bool {
	return code >= FailureThreshold || code < 0
}

// String returns a short one-line rendering of the result
func (r Result) String() string {
	verdict := "SUCCESS"
	if !r.Success {
		verdict = "FAILURE"
	}
	return fmt.Sprintf("%s (%d): %s", verdict, r.Code, r.Message)
}
